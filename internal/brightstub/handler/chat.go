package handler

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"

	"github.com/kiosk404/brightchat/internal/brightstub/scenario"
	"github.com/kiosk404/brightchat/internal/pkg/core"
	"github.com/kiosk404/brightchat/pkg/errorx"
	"github.com/kiosk404/brightchat/pkg/logger"
)

const doneRecord = "data: [DONE]\n\n"

// ChatRequest is the body of POST /agents/:id/chat.
type ChatRequest struct {
	Query            string   `json:"query" binding:"required"`
	SessionID        *string  `json:"session_id,omitempty"`
	Stream           bool     `json:"stream"`
	KnowledgeBaseIDs []string `json:"knowledge_base_ids,omitempty"`
}

// ChatHandler replays a scenario as an execution stream.
type ChatHandler struct {
	catalog *scenario.Catalog
	// delay overrides the scenario delay when positive.
	delay time.Duration
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(catalog *scenario.Catalog, delay time.Duration) *ChatHandler {
	return &ChatHandler{catalog: catalog, delay: delay}
}

// Chat handles POST /agents/:id/chat.
func (h *ChatHandler) Chat(c *gin.Context) {
	id := c.Param("id")
	sc, ok := h.catalog.Get(id)
	if !ok {
		core.WriteResponse(c, errorx.WithCode(ErrAgentNotFound, "agent %q not found", id), nil)
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrBind, "bind chat request"), nil)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		core.WriteResponse(c, errorx.WithCode(ErrValidation, "query must not be blank"), nil)
		return
	}
	if !req.Stream {
		logger.Debug("[Chat] agent %s: non-streaming request answered with a stream", id)
	}

	frames, err := sc.Render()
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrScenarioRender, "render scenario %q", id), nil)
		return
	}

	if _, ok := c.Writer.(http.Flusher); !ok {
		core.WriteResponse(c, errorx.WithCode(ErrStreamUnsupported, "response writer cannot flush"), nil)
		return
	}

	session := ""
	if req.SessionID != nil {
		session = *req.SessionID
	}
	logger.Info("[Chat] agent=%s session=%s frames=%d kb=%d", id, session, len(frames), len(req.KnowledgeBaseIDs))

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	delay := sc.Delay()
	if h.delay > 0 {
		delay = h.delay
	}

	ctx := c.Request.Context()
	for i, f := range frames {
		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				logger.Debug("[Chat] client left agent %s after %d frames", id, i)
				return
			case <-time.After(delay):
			}
		}
		if ctx.Err() != nil {
			logger.Debug("[Chat] client left agent %s after %d frames", id, i)
			return
		}
		if err := writeFrame(c.Writer, f, sc.SplitBytes); err != nil {
			logger.Warn("[Chat] write frame %d for agent %s: %v", i, id, err)
			return
		}
	}

	if !sc.SkipDone {
		_ = writeChunks(c.Writer, []byte(doneRecord), sc.SplitBytes)
	}
}

// EncodeFrame returns the bytes written to the stream for f.
func EncodeFrame(f scenario.Frame) ([]byte, error) {
	var buf bytes.Buffer
	if f.Raw {
		buf.WriteString(f.Text)
		buf.WriteByte('\n')
		return buf.Bytes(), nil
	}
	if err := sse.Encode(&buf, sse.Event{Data: f.Text}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeFrame(w gin.ResponseWriter, f scenario.Frame, split int) error {
	data, err := EncodeFrame(f)
	if err != nil {
		return err
	}
	return writeChunks(w, data, split)
}

func writeChunks(w gin.ResponseWriter, data []byte, split int) error {
	if split <= 0 {
		split = len(data)
	}
	for len(data) > 0 {
		n := min(split, len(data))
		if _, err := w.Write(data[:n]); err != nil {
			return err
		}
		w.Flush()
		data = data[n:]
	}
	return nil
}
