package router

import (
	"fmt"
	"net/http"
)

func registerSwaggerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/", http.StatusMovedPermanently)
	})

	mux.HandleFunc("/swagger/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, swaggerHTML, "/swagger/openapi.json")
	})

	mux.HandleFunc("/swagger/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(openAPI))
	})
}

const swaggerHTML = `<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <title>Ledger Service API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.onload = function() {
      window.ui = SwaggerUIBundle({
        url: "%s",
        dom_id: "#swagger-ui"
      });
    };
  </script>
</body>
</html>`

const openAPI = `{
  "openapi": "3.0.3",
  "info": {
    "title": "Ledger Service API",
    "version": "1.0.0"
  },
  "paths": {
    "/accounts": {
      "post": {
        "summary": "Create an account in the chart of accounts",
        "security": [{"BasicAuth": []}],
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["code", "name", "accountType"],
                "properties": {
                  "code": {"type": "string"},
                  "name": {"type": "string"},
                  "accountType": {"type": "string", "enum": ["ASSET", "LIABILITY", "EQUITY", "REVENUE", "EXPENSE"]},
                  "allowManualJournal": {"type": "boolean"}
                }
              }
            }
          }
        },
        "responses": {
          "201": {"description": "Created"},
          "400": {"description": "Validation error"},
          "401": {"description": "Unauthorized"},
          "409": {"description": "Account code already exists"},
          "500": {"description": "Server error"}
        }
      },
      "get": {
        "summary": "List accounts, or fetch one by code",
        "security": [{"BasicAuth": []}],
        "parameters": [
          {
            "name": "code",
            "in": "query",
            "required": false,
            "schema": {"type": "string"}
          }
        ],
        "responses": {
          "200": {"description": "Accounts fetched"},
          "401": {"description": "Unauthorized"},
          "404": {"description": "Account not found"},
          "500": {"description": "Server error"}
        }
      }
    },
    "/accounts/rebuild-balances": {
      "post": {
        "summary": "Recompute every cached balance from posted and voided lines",
        "security": [{"BasicAuth": []}],
        "responses": {
          "200": {"description": "Balances rebuilt"},
          "401": {"description": "Unauthorized"},
          "500": {"description": "Server error"}
        }
      }
    },
    "/journals": {
      "post": {
        "summary": "Create a manual journal, as a draft or posted immediately",
        "security": [{"BasicAuth": []}],
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["transactionDate", "lines"],
                "properties": {
                  "transactionDate": {"type": "string", "format": "date"},
                  "description": {"type": "string"},
                  "post": {"type": "boolean"},
                  "isReversal": {"type": "boolean"},
                  "scheduledReversalDate": {"type": "string", "format": "date"},
                  "lines": {
                    "type": "array",
                    "items": {
                      "type": "object",
                      "required": ["accountCode"],
                      "properties": {
                        "accountCode": {"type": "string"},
                        "debit": {"type": "string"},
                        "credit": {"type": "string"},
                        "description": {"type": "string"}
                      }
                    }
                  }
                }
              }
            }
          }
        },
        "responses": {
          "201": {"description": "Journal created"},
          "400": {"description": "Validation error"},
          "401": {"description": "Unauthorized"},
          "404": {"description": "Account not found"},
          "422": {"description": "Ledger rules rejected the line set"},
          "500": {"description": "Server error"}
        }
      }
    },
    "/journals/post": {
      "post": {
        "summary": "Post a draft journal",
        "security": [{"BasicAuth": []}],
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["transactionId"],
                "properties": {
                  "transactionId": {"type": "string", "format": "uuid"}
                }
              }
            }
          }
        },
        "responses": {
          "200": {"description": "Journal posted"},
          "401": {"description": "Unauthorized"},
          "404": {"description": "Transaction not found"},
          "409": {"description": "Transaction is not a draft"},
          "422": {"description": "Ledger rules rejected the line set"},
          "500": {"description": "Server error"}
        }
      }
    },
    "/journals/cancel": {
      "post": {
        "summary": "Cancel a draft journal",
        "security": [{"BasicAuth": []}],
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["transactionId"],
                "properties": {
                  "transactionId": {"type": "string", "format": "uuid"}
                }
              }
            }
          }
        },
        "responses": {
          "200": {"description": "Journal cancelled"},
          "401": {"description": "Unauthorized"},
          "404": {"description": "Transaction not found"},
          "409": {"description": "Transaction is not a draft"},
          "500": {"description": "Server error"}
        }
      }
    },
    "/transactions": {
      "get": {
        "summary": "Fetch a transaction with its ledger lines",
        "security": [{"BasicAuth": []}],
        "parameters": [
          {
            "name": "transactionId",
            "in": "query",
            "required": true,
            "schema": {"type": "string", "format": "uuid"}
          }
        ],
        "responses": {
          "200": {"description": "Transaction fetched"},
          "401": {"description": "Unauthorized"},
          "404": {"description": "Transaction not found"},
          "500": {"description": "Server error"}
        }
      }
    },
    "/transactions/void": {
      "post": {
        "summary": "Void a posted transaction by posting its reversal",
        "security": [{"BasicAuth": []}],
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["transactionId"],
                "properties": {
                  "transactionId": {"type": "string", "format": "uuid"},
                  "reversalDate": {"type": "string", "format": "date"}
                }
              }
            }
          }
        },
        "responses": {
          "200": {"description": "Transaction voided"},
          "401": {"description": "Unauthorized"},
          "404": {"description": "Transaction not found"},
          "409": {"description": "Transaction is not posted"},
          "500": {"description": "Server error"}
        }
      }
    },
    "/transactions/scheduled-reversals": {
      "get": {
        "summary": "List posted journals whose scheduled reversal date has arrived",
        "security": [{"BasicAuth": []}],
        "parameters": [
          {
            "name": "onOrBefore",
            "in": "query",
            "required": false,
            "schema": {"type": "string", "format": "date"}
          }
        ],
        "responses": {
          "200": {"description": "Scheduled reversals fetched"},
          "400": {"description": "Validation error"},
          "401": {"description": "Unauthorized"},
          "500": {"description": "Server error"}
        }
      }
    },
    "/expenses": {
      "post": {
        "summary": "Record an expense, posted immediately",
        "security": [{"BasicAuth": []}],
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["transactionDate", "payments", "categories"],
                "properties": {
                  "transactionDate": {"type": "string", "format": "date"},
                  "description": {"type": "string"},
                  "payments": {
                    "type": "array",
                    "items": {
                      "type": "object",
                      "required": ["accountCode", "amount"],
                      "properties": {
                        "accountCode": {"type": "string"},
                        "amount": {"type": "string"},
                        "description": {"type": "string"}
                      }
                    }
                  },
                  "categories": {
                    "type": "array",
                    "items": {
                      "type": "object",
                      "required": ["accountCode", "amount"],
                      "properties": {
                        "accountCode": {"type": "string"},
                        "amount": {"type": "string"},
                        "description": {"type": "string"}
                      }
                    }
                  },
                  "taxLines": {
                    "type": "array",
                    "items": {
                      "type": "object",
                      "required": ["accountCode", "entryType", "amount"],
                      "properties": {
                        "accountCode": {"type": "string"},
                        "entryType": {"type": "string", "enum": ["DEBIT", "CREDIT"]},
                        "amount": {"type": "string"},
                        "description": {"type": "string"}
                      }
                    }
                  }
                }
              }
            }
          }
        },
        "responses": {
          "201": {"description": "Expense recorded"},
          "400": {"description": "Validation error"},
          "401": {"description": "Unauthorized"},
          "404": {"description": "Account not found"},
          "422": {"description": "Ledger rules rejected the line set"},
          "500": {"description": "Server error"}
        }
      }
    }
  },
  "components": {
    "securitySchemes": {
      "BasicAuth": {
        "type": "http",
        "scheme": "basic"
      }
    }
  }
}`
