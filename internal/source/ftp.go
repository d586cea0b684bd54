package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"time"

	"github.com/jlaffaye/ftp"

	"github.com/cdrflow/cdrflow/internal/common"
)

// FTPSource serves files from a remote FTP directory. Each operation
// dials a fresh session; CDR drops are low-frequency enough that
// connection reuse isn't worth the stale-session handling.
type FTPSource struct {
	now     func() time.Time
	addr    string
	user    string
	pass    string
	dir     string
	pattern string
	timeout time.Duration
}

// NewFTPSource configures an FTP-backed source. dir is the remote
// working directory; pattern filters listings after temporal expansion.
func NewFTPSource(addr, user, pass, dir, pattern string, timeout time.Duration) *FTPSource {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &FTPSource{
		addr:    addr,
		user:    user,
		pass:    pass,
		dir:     dir,
		pattern: pattern,
		timeout: timeout,
		now:     time.Now,
	}
}

// List implements Source.
func (s *FTPSource) List(ctx context.Context) ([]string, error) {
	conn, err := s.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = conn.Quit() }()

	names, err := conn.NameList(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: listing %s: %v", common.ErrSourceUnavailable, s.dir, err)
	}

	return filterByPattern(names, s.pattern, s.now()), nil
}

// Fetch implements Source.
func (s *FTPSource) Fetch(ctx context.Context, name string) (File, error) {
	conn, err := s.dial(ctx)
	if err != nil {
		return File{}, err
	}
	defer func() { _ = conn.Quit() }()

	if s.dir != "" {
		if err := conn.ChangeDir(s.dir); err != nil {
			return File{}, fmt.Errorf("%w: cd %s: %v", common.ErrSourceUnavailable, s.dir, err)
		}
	}

	resp, err := conn.Retr(name)
	if err != nil {
		if isFileUnavailable(err) {
			return File{}, fmt.Errorf("%w: %s", common.ErrFileNotFound, name)
		}
		return File{}, fmt.Errorf("%w: retrieving %s: %v", common.ErrSourceUnavailable, name, err)
	}
	defer func() { _ = resp.Close() }()

	data, err := io.ReadAll(resp)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return File{}, fmt.Errorf("fetch %s: %w", name, common.ErrTimeout)
		}
		return File{}, fmt.Errorf("%w: reading %s: %v", common.ErrSourceUnavailable, name, err)
	}

	return File{Name: name, Data: data}, nil
}

func (s *FTPSource) dial(ctx context.Context) (*ftp.ServerConn, error) {
	if err := ctx.Err(); err != nil {
		return nil, mapCtxErr(ctx, "dial "+s.addr)
	}

	conn, err := ftp.Dial(s.addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(s.timeout))
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("dial %s: %w", s.addr, common.ErrTimeout)
		}
		return nil, fmt.Errorf("%w: dial %s: %v", common.ErrSourceUnavailable, s.addr, err)
	}

	if err := conn.Login(s.user, s.pass); err != nil {
		_ = conn.Quit()
		return nil, fmt.Errorf("%w: login as %s: %v", common.ErrSourceUnavailable, s.user, err)
	}

	return conn, nil
}

func isFileUnavailable(err error) bool {
	var proto *textproto.Error
	return errors.As(err, &proto) && proto.Code == ftp.StatusFileUnavailable
}
