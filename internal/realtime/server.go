// Package realtime pushes notifications to connected browsers over Socket.IO.
package realtime

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	socket "github.com/zishang520/socket.io/socket"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursemarket-server-go/internal/features/notification"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/user"
	"github.com/mo-amir99/coursemarket-server-go/internal/utils/jwt"
	"github.com/mo-amir99/coursemarket-server-go/pkg/types"
)

const (
	EventConnected    = "connectionConfirmed"
	EventNotification = "notification"
	EventHeartbeat    = "ping"

	heartbeatInterval = 30 * time.Second
)

// Server wraps the Socket.IO server. Every authenticated socket joins the
// room of its user so notifications reach all of that user's tabs.
type Server struct {
	io     *socket.Server
	db     *gorm.DB
	tokens *jwt.Issuer
	logger *slog.Logger

	heartbeatStop chan struct{}
	heartbeatWG   sync.WaitGroup

	connMu      sync.RWMutex
	connections map[string]*socket.Socket
}

// NewServer creates the Socket.IO server and starts its heartbeat.
func NewServer(db *gorm.DB, tokens *jwt.Issuer, logger *slog.Logger) *Server {
	opts := socket.DefaultServerOptions()
	opts.SetPingTimeout(60 * time.Second)
	opts.SetPingInterval(25 * time.Second)
	opts.SetServeClient(false)
	opts.SetPath("/socket.io")

	s := &Server{
		io:          socket.NewServer(nil, opts),
		db:          db,
		tokens:      tokens,
		logger:      logger,
		connections: make(map[string]*socket.Socket),
	}

	s.io.Use(s.authenticate)
	s.io.On("connection", func(args ...any) {
		sock, ok := args[0].(*socket.Socket)
		if !ok {
			s.logger.Error("unexpected connection payload", slog.Any("payload", args))
			return
		}
		s.handleConnection(sock)
	})
	s.startHeartbeat()

	return s
}

// Handler returns the HTTP handler serving the Socket.IO transport.
func (s *Server) Handler() http.Handler {
	return s.io.ServeHandler(nil)
}

// Connections reports how many sockets are currently attached.
func (s *Server) Connections() int {
	s.connMu.RLock()
	defer s.connMu.RUnlock()
	return len(s.connections)
}

// PublishNotification emits n to every socket of its owner.
func (s *Server) PublishNotification(_ context.Context, n notification.Notification) error {
	return s.io.To(userRoom(n.UserID.String())).Emit(EventNotification, n)
}

// Close stops the heartbeat and shuts the server down.
func (s *Server) Close() error {
	if stop := s.heartbeatStop; stop != nil {
		close(stop)
		s.heartbeatWG.Wait()
		s.heartbeatStop = nil
	}

	done := make(chan struct{})
	s.io.Close(func() {
		close(done)
	})
	<-done
	return nil
}

func (s *Server) authenticate(sock *socket.Socket, next func(*socket.ExtendedError)) {
	token := handshakeToken(sock)
	if token == "" {
		s.logger.Warn("socket connection rejected: missing token")
		next(socket.NewExtendedError("missing authentication token", map[string]any{"code": "MISSING_TOKEN"}))
		return
	}

	claims, err := s.tokens.VerifyAccess(token)
	if err != nil {
		s.logger.Warn("socket connection rejected: invalid token", slog.String("error", err.Error()))
		next(socket.NewExtendedError("invalid token", map[string]any{"code": "INVALID_TOKEN"}))
		return
	}

	account, err := user.Get(s.db, claims.UserID)
	if err != nil {
		s.logger.Warn("socket connection rejected: user not found", slog.Any("userId", claims.UserID))
		next(socket.NewExtendedError("user not found", map[string]any{"code": "USER_NOT_FOUND"}))
		return
	}
	if account.Status == types.UserStatusInactive {
		next(socket.NewExtendedError("account is inactive", map[string]any{"code": "INACTIVE"}))
		return
	}

	sock.SetData(&account)
	next(nil)
}

func (s *Server) handleConnection(sock *socket.Socket) {
	account, ok := sock.Data().(*user.User)
	if !ok || account == nil {
		s.logger.Error("connection established without user context")
		sock.Disconnect(true)
		return
	}

	id := string(sock.Id())
	s.connMu.Lock()
	s.connections[id] = sock
	s.connMu.Unlock()

	sock.Join(userRoom(account.ID.String()))

	unread, err := notification.CountUnread(s.db, account.ID)
	if err != nil {
		s.logger.Warn("unread count for socket failed", slog.String("error", err.Error()))
	}
	if err := sock.Emit(EventConnected, connectedPayload(*account, unread, time.Now())); err != nil {
		s.logger.Warn("failed to emit connection confirmation", slog.String("error", err.Error()))
	}

	s.logger.Debug("socket connected",
		slog.String("userId", account.ID.String()),
		slog.String("connId", id),
	)

	sock.On("disconnect", func(args ...any) {
		s.connMu.Lock()
		delete(s.connections, id)
		s.connMu.Unlock()
		s.logger.Debug("socket disconnected", slog.String("connId", id), slog.Any("reason", firstArg(args)))
	})
}

func (s *Server) startHeartbeat() {
	s.heartbeatStop = make(chan struct{})
	s.heartbeatWG.Add(1)

	go func() {
		defer s.heartbeatWG.Done()
		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.sendHeartbeat()
			case <-s.heartbeatStop:
				return
			}
		}
	}()
}

func (s *Server) sendHeartbeat() {
	timestamp := time.Now().Unix()

	s.connMu.RLock()
	defer s.connMu.RUnlock()

	for id, sock := range s.connections {
		if err := sock.Emit(EventHeartbeat, timestamp); err != nil {
			s.logger.Debug("heartbeat emit failed", slog.String("connId", id), slog.String("error", err.Error()))
		}
	}
}

func connectedPayload(account user.User, unread int64, now time.Time) map[string]any {
	return map[string]any{
		"userId":      account.ID.String(),
		"userName":    account.FullName,
		"role":        account.Role,
		"unreadCount": unread,
		"timestamp":   now.UTC().Format(time.RFC3339),
	}
}

func handshakeToken(sock *socket.Socket) string {
	if sock == nil {
		return ""
	}
	if hs := sock.Handshake(); hs != nil {
		if auth, ok := hs.Auth.(map[string]any); ok {
			if token := tokenFromAuth(auth); token != "" {
				return token
			}
		}
		if hs.Query != nil {
			if token, ok := hs.Query.Get("token"); ok && token != "" {
				return bearer(token)
			}
		}
	}
	return ""
}

func tokenFromAuth(auth map[string]any) string {
	token, _ := auth["token"].(string)
	return bearer(token)
}

func bearer(raw string) string {
	return strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
}

func firstArg(args []any) any {
	if len(args) == 0 {
		return nil
	}
	return args[0]
}

func userRoom(userID string) socket.Room {
	return socket.Room("user_" + userID)
}
