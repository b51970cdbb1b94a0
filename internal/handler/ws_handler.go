package handler

import (
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/examsession/internal/middleware"
	"github.com/stemsi/examsession/internal/model"
	"github.com/stemsi/examsession/internal/service"
	"github.com/stemsi/examsession/internal/session"
	ws "github.com/stemsi/examsession/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams a student's exam session over a WebSocket.
type WSHandler struct {
	sessionService *service.ExamSessionService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessionService *service.ExamSessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessionService: sessionService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// SessionStream godoc
// WS /ws/v1/student/sessions/:session_id/stream?token=...
// Upgrades to WebSocket for answering, navigation and submission. When the
// session times out while connected, the graded event is pushed unprompted.
func (h *WSHandler) SessionStream(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "session_id")
	if !ok {
		return
	}

	student := middleware.CurrentStudent(c)
	sess, err := h.sessionService.Get(c.Request.Context(), student, sessionID)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.NewConn(raw)
	defer conn.Close()

	wsLog := h.log.With().
		Str("session_id", sessionID.String()).
		Str("student", student.Username).
		Logger()
	wsLog.Info().Msg("Student connected")

	st := &stream{conn: conn, sess: sess, student: student, svc: h.sessionService, log: wsLog}
	_ = conn.WriteTyped(ws.QuestionResponse{Event: ws.EventQuestion, Session: sess.View()})

	closed := make(chan struct{})
	defer close(closed)
	go func() {
		select {
		case <-sess.Done():
			st.sendGraded(sess.Result())
		case <-closed:
		}
	}()

	for {
		var msg ws.Request
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}
		st.handle(c, &msg)
	}
}

// stream is the per-connection state.
type stream struct {
	conn    *ws.Conn
	sess    *session.ExamSession
	student model.Student
	svc     *service.ExamSessionService
	log     zerolog.Logger

	gradedOnce sync.Once
}

func (s *stream) handle(c *gin.Context, msg *ws.Request) {
	ctx := c.Request.Context()

	switch msg.Action {
	case ws.ActionAnswer:
		if msg.QID == "" {
			_ = s.conn.WriteError("q_id is required")
			return
		}
		req := &session.AnswerRequest{QuestionID: msg.QID, Answer: msg.Answer}
		if _, err := s.svc.Answer(ctx, s.student, s.sess.ID, req); err != nil {
			s.writeErr(err)
			return
		}
		_ = s.conn.WriteTyped(ws.SuccessResponse{Event: ws.EventSuccess, Status: "saved", QID: msg.QID})

	case ws.ActionAdvance:
		sess, err := s.svc.Advance(ctx, s.student, s.sess.ID)
		if err != nil {
			s.writeErr(err)
			return
		}
		_ = s.conn.WriteTyped(ws.QuestionResponse{Event: ws.EventQuestion, Session: sess.View()})

	case ws.ActionSubmit:
		result, err := s.svc.Submit(ctx, s.student, s.sess.ID)
		if err != nil {
			s.writeErr(err)
			return
		}
		s.sendGraded(result)

	case ws.ActionPing:
		_ = s.conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})

	default:
		s.log.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
		_ = s.conn.WriteError("unknown action: " + string(msg.Action))
	}
}

// sendGraded pushes the graded event at most once per connection.
func (s *stream) sendGraded(result *model.ExamResult) {
	if result == nil {
		return
	}
	s.gradedOnce.Do(func() {
		if err := s.conn.WriteTyped(ws.Graded(result)); err != nil {
			s.log.Debug().Err(err).Msg("Graded push failed")
		}
	})
}

func (s *stream) writeErr(err error) {
	switch {
	case errors.Is(err, session.ErrAlreadySubmitted):
		_ = s.conn.WriteError("exam session already submitted")
	case errors.Is(err, session.ErrQuestionNotInSession):
		_ = s.conn.WriteError("question is not part of this exam session")
	default:
		s.log.Error().Err(err).Msg("Stream action failed")
		_ = s.conn.WriteError("internal error")
	}
}
