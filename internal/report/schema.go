package report

// JSON Schemas for the two artifact variants. Readers validate stored
// content against these before trusting it; a file that fails is
// surfaced as a corrupt artifact, not a partial Report.

const contractSchema = `{
  "type": "object",
  "required": [
    "filename", "contract_code", "client_city", "generation_date",
    "total_calls", "total_duration_minutes", "total_cost",
    "call_types_breakdown", "daily_breakdown", "is_summary"
  ],
  "properties": {
    "filename": {"type": "string"},
    "contract_code": {"type": "string"},
    "client_city": {"type": "string"},
    "generation_date": {"type": "string"},
    "total_calls": {"type": "integer", "minimum": 0},
    "total_duration_minutes": {"type": "number", "minimum": 0},
    "total_cost": {"type": "number"},
    "call_types_breakdown": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["numero_chiamate", "durata_totale_secondi", "costo_totale_euro", "costo_al_minuto"],
        "properties": {
          "numero_chiamate": {"type": "integer", "minimum": 0},
          "durata_totale_secondi": {"type": "number", "minimum": 0},
          "costo_totale_euro": {"type": "number"},
          "costo_al_minuto": {"type": "number"}
        }
      }
    },
    "daily_breakdown": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["chiamate", "durata_minuti", "costo_euro"],
        "properties": {
          "chiamate": {"type": "integer", "minimum": 0},
          "durata_minuti": {"type": "number", "minimum": 0},
          "costo_euro": {"type": "number"}
        }
      }
    },
    "is_summary": {"const": false}
  }
}`

const summarySchema = `{
  "type": "object",
  "required": [
    "filename", "contract_code", "client_city", "generation_date",
    "total_calls", "total_duration_minutes", "total_cost",
    "call_types_breakdown", "top_contracts", "is_summary"
  ],
  "properties": {
    "filename": {"type": "string"},
    "contract_code": {"type": "string"},
    "client_city": {"type": "integer", "minimum": 0},
    "generation_date": {"type": "string"},
    "total_calls": {"type": "integer", "minimum": 0},
    "total_duration_minutes": {"type": "number", "minimum": 0},
    "total_cost": {"type": "number"},
    "call_types_breakdown": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["calls", "duration_minutes", "cost_euro"],
        "properties": {
          "calls": {"type": "integer", "minimum": 0},
          "duration_minutes": {"type": "number", "minimum": 0},
          "cost_euro": {"type": "number"}
        }
      }
    },
    "top_contracts": {
      "type": "object",
      "required": ["top_by_cost", "top_by_calls"],
      "properties": {
        "top_by_cost": {"type": "array", "items": {"$ref": "#/$defs/topContract"}},
        "top_by_calls": {"type": "array", "items": {"$ref": "#/$defs/topContract"}}
      }
    },
    "is_summary": {"const": true}
  },
  "$defs": {
    "topContract": {
      "type": "object",
      "required": ["codice_contratto", "cliente_finale_comune", "totale_chiamate", "costo_totale_euro"],
      "properties": {
        "codice_contratto": {"type": "string"},
        "cliente_finale_comune": {"type": "string"},
        "totale_chiamate": {"type": "integer", "minimum": 0},
        "costo_totale_euro": {"type": "number"}
      }
    }
  }
}`
