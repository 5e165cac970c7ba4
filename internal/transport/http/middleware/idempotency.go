package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"

	"rrhh/internal/platform/querier"
	"rrhh/internal/requestctx"
	"rrhh/internal/transport/http/api"
)

const IdempotencyHeader = "Idempotency-Key"

var ErrIdempotencyConflict = errors.New("idempotency key conflicts with existing request")

type StoredResponse struct {
	Status int
	Body   json.RawMessage
}

type IdempotencyStore interface {
	Check(ctx context.Context, actor, endpoint, key, requestHash string) (StoredResponse, bool, error)
	Save(ctx context.Context, actor, endpoint, key, requestHash string, response StoredResponse) error
}

type PgIdempotencyStore struct {
	db querier.Querier
}

func NewIdempotencyStore(db querier.Querier) *PgIdempotencyStore {
	return &PgIdempotencyStore{db: db}
}

func RequestHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func (s *PgIdempotencyStore) Check(ctx context.Context, actor, endpoint, key, requestHash string) (StoredResponse, bool, error) {
	var storedHash string
	var stored StoredResponse
	err := s.db.QueryRow(ctx, `
    SELECT request_hash, status, response_json
    FROM idempotency_keys
    WHERE actor_id = $1 AND key = $2 AND endpoint = $3
  `, actor, key, endpoint).Scan(&storedHash, &stored.Status, &stored.Body)
	if errors.Is(err, pgx.ErrNoRows) {
		return StoredResponse{}, false, nil
	}
	if err != nil {
		return StoredResponse{}, false, err
	}
	if storedHash != requestHash {
		return StoredResponse{}, false, ErrIdempotencyConflict
	}
	return stored, true, nil
}

func (s *PgIdempotencyStore) Save(ctx context.Context, actor, endpoint, key, requestHash string, response StoredResponse) error {
	tag, err := s.db.Exec(ctx, `
    INSERT INTO idempotency_keys (actor_id, key, endpoint, request_hash, status, response_json)
    VALUES ($1, $2, $3, $4, $5, $6)
    ON CONFLICT (actor_id, key, endpoint)
    DO UPDATE SET status = EXCLUDED.status, response_json = EXCLUDED.response_json
    WHERE idempotency_keys.request_hash = EXCLUDED.request_hash
  `, actor, key, endpoint, requestHash, response.Status, response.Body)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIdempotencyConflict
	}
	return nil
}

type capturingWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (c *capturingWriter) WriteHeader(code int) {
	c.status = code
	c.ResponseWriter.WriteHeader(code)
}

func (c *capturingWriter) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

// Idempotency replays the stored JSON response when a request repeats an
// Idempotency-Key with the same body. Only successful responses are kept.
func Idempotency(store IdempotencyStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
			if key == "" || store == nil {
				next.ServeHTTP(w, r)
				return
			}
			requestID := GetRequestID(r.Context())
			if len(key) > 128 {
				api.Fail(w, http.StatusBadRequest, "invalid_idempotency_key", "idempotency key too long", requestID)
				return
			}

			payload, err := io.ReadAll(r.Body)
			if err != nil {
				api.Fail(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body too large", requestID)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(payload))

			actor := requestctx.GetActor(r.Context())
			endpoint := r.Method + " " + r.URL.Path
			hash := RequestHash(payload)

			stored, found, err := store.Check(r.Context(), actor, endpoint, key, hash)
			if errors.Is(err, ErrIdempotencyConflict) {
				api.Fail(w, http.StatusUnprocessableEntity, "idempotency_conflict", err.Error(), requestID)
				return
			}
			if err != nil {
				slog.Error("idempotency check failed", "endpoint", endpoint, "err", err)
				api.Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", requestID)
				return
			}
			if found {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Idempotent-Replayed", "true")
				w.WriteHeader(stored.Status)
				_, _ = w.Write(stored.Body)
				return
			}

			capture := &capturingWriter{ResponseWriter: w}
			next.ServeHTTP(capture, r)
			if capture.status < 200 || capture.status >= 300 || !json.Valid(capture.body.Bytes()) {
				return
			}
			response := StoredResponse{Status: capture.status, Body: bytes.TrimSpace(capture.body.Bytes())}
			if err := store.Save(context.WithoutCancel(r.Context()), actor, endpoint, key, hash, response); err != nil {
				slog.Warn("idempotency save failed", "endpoint", endpoint, "err", err)
			}
		})
	}
}
