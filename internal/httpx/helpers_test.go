package httpx

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"shop-backend/internal/auth"
)

// authedRequest builds a request that already passed the auth middleware.
func authedRequest(method, target string, body io.Reader, uid int64) *http.Request {
	req := httptest.NewRequest(method, target, body)
	return req.WithContext(auth.WithUserID(req.Context(), uid))
}

func jsonBody(s string) io.Reader { return strings.NewReader(s) }

func serve(h interface{ Register(chi.Router) }, req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.Register(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// deadRedis points at a closed port. The handlers treat the cache as best
// effort, so every call fails fast and the database path is exercised.
func deadRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         "127.0.0.1:1",
		DialTimeout:  50 * time.Millisecond,
		ReadTimeout:  50 * time.Millisecond,
		WriteTimeout: 50 * time.Millisecond,
		MaxRetries:   -1,
	})
}

type published struct {
	key     []byte
	value   []byte
	headers []kafkago.Header
}

// capturePublisher records what the handlers would hand to the producer.
type capturePublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *capturePublisher) Publish(key, value []byte, headers ...kafkago.Header) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{key: key, value: value, headers: headers})
}

func (p *capturePublisher) all() []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]published(nil), p.events...)
}
