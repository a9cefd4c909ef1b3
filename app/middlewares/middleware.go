package middlewares

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Rakhulsr/techstore-api/app/helpers"
	"github.com/Rakhulsr/techstore-api/app/utils/apperr"
	gh "github.com/gorilla/handlers"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
	"github.com/unrolled/render"
	"golang.org/x/time/rate"
)

// MethodOverrideMiddleware lets a POST carry the real verb in a _method
// form field (urlencoded or multipart) or an X-HTTP-Method-Override header,
// so browsers can send multipart PUT requests with file uploads.
func MethodOverrideMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			override := r.Header.Get("X-HTTP-Method-Override")
			contentType := r.Header.Get("Content-Type")
			switch {
			case override != "":
			case strings.HasPrefix(contentType, "multipart/form-data"):
				parsedHere := r.MultipartForm == nil
				_ = r.ParseMultipartForm(helpers.MaxMultipartMemory)
				if parsedHere && r.MultipartForm != nil {
					defer r.MultipartForm.RemoveAll()
				}
				override = r.FormValue("_method")
			case strings.HasPrefix(contentType, "application/x-www-form-urlencoded"):
				_ = r.ParseForm()
				override = r.PostForm.Get("_method")
			}

			switch m := strings.ToUpper(strings.TrimSpace(override)); m {
			case http.MethodPut, http.MethodPatch, http.MethodDelete:
				r.Method = m
			}
		}
		next.ServeHTTP(w, r)
	})
}

// BodyLimitMiddleware caps request bodies at limit bytes. Multipart bodies are
// parsed here, before any WithContext copy of the request is made, so every
// copy shares the form and its temp files are removed when the request ends.
func BodyLimitMiddleware(limit int64, rnd *render.Render) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, r)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)

			if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
				// other parse errors are reported by the handler against "body"
				err := r.ParseMultipartForm(helpers.MaxMultipartMemory)
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					helpers.RenderError(rnd, w, r, apperr.PayloadTooLarge())
					return
				}
				if r.MultipartForm != nil {
					defer r.MultipartForm.RemoveAll()
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// TrustedProxyHeaders honours X-Forwarded-For and friends only when the
// direct peer is one of the trusted proxies (IPs or CIDRs). Anyone else
// keeps their socket address, which the rate limiter keys on.
func TrustedProxyHeaders(trusted []string) func(http.Handler) http.Handler {
	nets := parseTrusted(trusted)
	return func(next http.Handler) http.Handler {
		if len(nets) == 0 {
			return next
		}
		proxied := gh.ProxyHeaders(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ip := net.ParseIP(clientIP(r)); ip != nil {
				for _, n := range nets {
					if n.Contains(ip) {
						proxied.ServeHTTP(w, r)
						return
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func parseTrusted(entries []string) []*net.IPNet {
	var nets []*net.IPNet
	for _, entry := range entries {
		if !strings.Contains(entry, "/") {
			if ip := net.ParseIP(entry); ip != nil && ip.To4() != nil {
				entry += "/32"
			} else {
				entry += "/128"
			}
		}
		_, n, err := net.ParseCIDR(entry)
		if err != nil {
			log.Warn().Str("entry", entry).Msg("ignoring invalid trusted proxy")
			continue
		}
		nets = append(nets, n)
	}
	return nets
}

// RequestLogger attaches a per-request zerolog logger with a request id and
// writes one access line per request.
func RequestLogger(logger zerolog.Logger) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		hlog.NewHandler(logger),
		hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
			hlog.FromRequest(r).Info().
				Str("method", r.Method).
				Stringer("url", r.URL).
				Int("status", status).
				Int("size", size).
				Dur("duration", duration).
				Msg("request")
		}),
		hlog.RemoteAddrHandler("ip"),
		hlog.UserAgentHandler("user_agent"),
		hlog.RequestIDHandler("req_id", "X-Request-Id"),
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles requests per client IP with a token bucket.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	ttl      time.Duration
	render   *render.Render
}

// NewRateLimiter allows perMinute requests per minute per IP.
func NewRateLimiter(perMinute int, rnd *render.Render) *RateLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		ttl:      3 * time.Minute,
		render:   rnd,
	}
}

func (rl *RateLimiter) allow(ip string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > rl.ttl {
			delete(rl.visitors, key)
		}
	}

	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.allow(ip, time.Now()) {
			hlog.FromRequest(r).Warn().Str("ip", ip).Str("path", r.URL.Path).Msg("rate limit exceeded")
			w.Header().Set("Retry-After", "60")
			helpers.RenderError(rl.render, w, r, apperr.TooManyRequests())
			return
		}
		next.ServeHTTP(w, r)
	})
}
