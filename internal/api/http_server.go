package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/RodolfoDevApp/eventshop-itemsync-go/internal/domain"
)

const maxBodyBytes = 1 << 20

// Server agrupa deps para la capa HTTP. Writes go to the local store only;
// live clients hear about them through the change relay.
type Server struct {
	items     domain.ItemRepository
	snapshots domain.SnapshotStore
	live      http.Handler
	metrics   http.Handler
	log       zerolog.Logger
}

func NewServer(
	items domain.ItemRepository,
	snapshots domain.SnapshotStore,
	live http.Handler,
	metrics http.Handler,
	log zerolog.Logger,
) *Server {
	return &Server{
		items:     items,
		snapshots: snapshots,
		live:      live,
		metrics:   metrics,
		log:       log,
	}
}

// RegisterRoutes registra todas las rutas HTTP en el router.
func (s *Server) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/swagger.json", s.handleSwaggerJson).Methods(http.MethodGet)
	router.Handle("/metrics", s.metrics).Methods(http.MethodGet)
	router.Handle("/ws", s.live)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/items", s.handleListItems).Methods(http.MethodGet)
	api.HandleFunc("/items", s.handleCreateItem).Methods(http.MethodPost)
	api.HandleFunc("/items/{id:[0-9]+}", s.handleGetItem).Methods(http.MethodGet)
	api.HandleFunc("/items/{id:[0-9]+}", s.handleUpdateItem).Methods(http.MethodPut)
	api.HandleFunc("/items/{id:[0-9]+}", s.handleDeleteItem).Methods(http.MethodDelete)
	api.HandleFunc("/cached-inventory", s.handleCachedInventory).Methods(http.MethodGet)
}

// Respuesta de health.
type healthResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type deleteResponse struct {
	Success bool `json:"success"`
}

// Respuesta de inventario cacheado. Missing parts are null.
type cachedInventoryResponse struct {
	Items  []domain.CachedItem `json:"items"`
	Stats  *domain.Stats       `json:"stats"`
	Error  *string             `json:"error"`
	Source string              `json:"source"`
}

const (
	sourceCache      = "redis-cache"
	sourceCacheMiss  = "cache-miss"
	sourceCacheError = "redis-error"
)

// Handler /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// Handler GET /api/items
func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.items.List(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("list items")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Handler GET /api/items/{id}
func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	item, err := s.items.GetByID(r.Context(), id)
	if err != nil {
		s.log.Error().Err(err).Int64("item_id", id).Msg("get item")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "Item not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Handler POST /api/items
func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	fields, ok := decodeFields(w, r)
	if !ok {
		return
	}

	item, err := s.items.Insert(r.Context(), fields)
	if err != nil {
		s.log.Error().Err(err).Msg("create item")
		writeError(w, http.StatusInternalServerError, "Failed to create item")
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// Handler PUT /api/items/{id}
func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}
	fields, ok := decodeFields(w, r)
	if !ok {
		return
	}

	// Un fallo del store se reporta igual que un id inexistente.
	item, err := s.items.Update(r.Context(), id, fields)
	if err != nil {
		s.log.Error().Err(err).Int64("item_id", id).Msg("update item")
	}
	if err != nil || item == nil {
		writeError(w, http.StatusNotFound, "Item not found or update failed")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Handler DELETE /api/items/{id}
func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	deleted, err := s.items.Delete(r.Context(), id)
	if err != nil {
		s.log.Error().Err(err).Int64("item_id", id).Msg("delete item")
	}
	if err != nil || !deleted {
		writeError(w, http.StatusNotFound, "Item not found or delete failed")
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{Success: true})
}

// Handler GET /api/cached-inventory
func (s *Server) handleCachedInventory(w http.ResponseWriter, r *http.Request) {
	cached, err := s.snapshots.Load(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("load cached inventory")
		msg := "Failed to fetch from Redis cache"
		writeJSON(w, http.StatusInternalServerError, cachedInventoryResponse{Error: &msg, Source: sourceCacheError})
		return
	}
	if cached.Items == nil && cached.Stats == nil {
		msg := "Cache miss"
		writeJSON(w, http.StatusOK, cachedInventoryResponse{Error: &msg, Source: sourceCacheMiss})
		return
	}
	writeJSON(w, http.StatusOK, cachedInventoryResponse{
		Items:  cached.Items,
		Stats:  cached.Stats,
		Source: sourceCache,
	})
}

// Handler GET /swagger.json
func (s *Server) handleSwaggerJson(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(openAPISpec))
}

func itemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "item id is invalid")
		return 0, false
	}
	return id, true
}

// decodeFields reads the item body. An empty body or empty object is "No
// data provided"; stock cannot be negative.
func decodeFields(w http.ResponseWriter, r *http.Request) (domain.ItemFields, bool) {
	var fields domain.ItemFields

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return fields, false
	}

	var raw map[string]json.RawMessage
	if len(body) > 0 {
		if err := json.Unmarshal(body, &raw); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request payload")
			return fields, false
		}
	}
	if len(raw) == 0 {
		writeError(w, http.StatusBadRequest, "No data provided")
		return fields, false
	}

	if err := json.Unmarshal(body, &fields); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			writeError(w, http.StatusBadRequest, "Invalid value for "+typeErr.Field)
			return fields, false
		}
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return fields, false
	}
	if fields.StockOnHand < 0 {
		writeError(w, http.StatusBadRequest, "stock on hand cannot be negative")
		return fields, false
	}
	return fields, true
}

// WithCORS lets browsers on any origin call the API. Wrap the whole router:
// preflight requests match no route.
func WithCORS(h http.Handler) http.Handler {
	return handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(h)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// Util para escribir JSON
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Spec OpenAPI minimal en JSON para Swagger.
const openAPISpec = `{
  "openapi": "3.0.0",
  "info": {
    "title": "Item Sync Service API",
    "version": "1.0.0"
  },
  "paths": {
    "/health": {
      "get": {
        "summary": "Health check",
        "responses": {
          "200": {
            "description": "Service is healthy",
            "content": {
              "application/json": {
                "schema": { "$ref": "#/components/schemas/HealthResponse" }
              }
            }
          }
        }
      }
    },
    "/api/items": {
      "get": {
        "summary": "List items",
        "responses": {
          "200": {
            "description": "All items, ordered by id",
            "content": {
              "application/json": {
                "schema": { "type": "array", "items": { "$ref": "#/components/schemas/Item" } }
              }
            }
          }
        }
      },
      "post": {
        "summary": "Create item",
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": { "$ref": "#/components/schemas/ItemFields" }
            }
          }
        },
        "responses": {
          "201": {
            "description": "Item created",
            "content": {
              "application/json": {
                "schema": { "$ref": "#/components/schemas/Item" }
              }
            }
          },
          "400": { "description": "No data provided or invalid payload" },
          "500": { "description": "Failed to create item" }
        }
      }
    },
    "/api/items/{id}": {
      "parameters": [
        {
          "name": "id",
          "in": "path",
          "required": true,
          "schema": { "type": "integer", "format": "int64" }
        }
      ],
      "get": {
        "summary": "Get item by id",
        "responses": {
          "200": {
            "description": "Item found",
            "content": {
              "application/json": {
                "schema": { "$ref": "#/components/schemas/Item" }
              }
            }
          },
          "404": { "description": "Item not found" }
        }
      },
      "put": {
        "summary": "Replace item fields",
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": { "$ref": "#/components/schemas/ItemFields" }
            }
          }
        },
        "responses": {
          "200": {
            "description": "Item updated",
            "content": {
              "application/json": {
                "schema": { "$ref": "#/components/schemas/Item" }
              }
            }
          },
          "400": { "description": "No data provided or invalid payload" },
          "404": { "description": "Item not found or update failed" }
        }
      },
      "delete": {
        "summary": "Delete item",
        "responses": {
          "200": { "description": "Item deleted" },
          "404": { "description": "Item not found or delete failed" }
        }
      }
    },
    "/api/cached-inventory": {
      "get": {
        "summary": "Cached item list and statistics",
        "responses": {
          "200": {
            "description": "Cache hit or cache miss",
            "content": {
              "application/json": {
                "schema": { "$ref": "#/components/schemas/CachedInventoryResponse" }
              }
            }
          },
          "500": { "description": "Cache unavailable" }
        }
      }
    },
    "/ws": {
      "get": {
        "summary": "Websocket stream of item_update events",
        "responses": {
          "101": { "description": "Switching protocols" }
        }
      }
    }
  },
  "components": {
    "schemas": {
      "HealthResponse": {
        "type": "object",
        "properties": {
          "status": { "type": "string" }
        }
      },
      "ItemFields": {
        "type": "object",
        "properties": {
          "name": { "type": "string" },
          "sku": { "type": "string" },
          "rate": { "type": "string" },
          "purchase rate": { "type": "string" },
          "stock on hand": { "type": "integer", "minimum": 0 }
        }
      },
      "Item": {
        "allOf": [
          { "$ref": "#/components/schemas/ItemFields" },
          {
            "type": "object",
            "properties": {
              "item_id": { "type": "integer", "format": "int64" }
            }
          }
        ]
      },
      "CachedItem": {
        "type": "object",
        "properties": {
          "item_id": { "type": "integer", "format": "int64" },
          "name": { "type": "string" },
          "sku": { "type": "string" },
          "rate": { "type": "number" },
          "purchase rate": { "type": "number" },
          "stock on hand": { "type": "integer" }
        }
      },
      "Stats": {
        "type": "object",
        "properties": {
          "totalProducts": { "type": "integer" },
          "totalValue": { "type": "number" },
          "lowStockCount": { "type": "integer" },
          "cacheLastUpdated": { "type": "string", "format": "date-time" }
        }
      },
      "CachedInventoryResponse": {
        "type": "object",
        "properties": {
          "items": {
            "type": "array",
            "nullable": true,
            "items": { "$ref": "#/components/schemas/CachedItem" }
          },
          "stats": {
            "nullable": true,
            "allOf": [{ "$ref": "#/components/schemas/Stats" }]
          },
          "error": { "type": "string", "nullable": true },
          "source": {
            "type": "string",
            "enum": ["redis-cache", "cache-miss", "redis-error"]
          }
        }
      }
    }
  }
}`
