package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Riboost-Studio/voucher-print/internal/model"
)

const defaultReconnectDelay = 5 * time.Second

// --- WebSocket Agent Logic ---

// GenerateFunc renders the unused vouchers of a site.
type GenerateFunc func(ctx context.Context, site string) (*model.Sheet, error)

// DeliverFunc hands a rendered sheet to its destination.
type DeliverFunc func(ctx context.Context, sheet *model.Sheet) error

// Agent keeps a connection to the dispatch server and prints voucher sheets
// on request.
type Agent struct {
	cfg            model.AgentConfig
	generate       GenerateFunc
	deliver        DeliverFunc
	logger         *zap.Logger
	reconnectDelay time.Duration
}

func NewAgent(cfg model.AgentConfig, generate GenerateFunc, deliver DeliverFunc, logger *zap.Logger) *Agent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agent{
		cfg:            cfg,
		generate:       generate,
		deliver:        deliver,
		logger:         logger.With(zap.String("agent_key", cfg.AgentKey)),
		reconnectDelay: defaultReconnectDelay,
	}
}

// Run connects and reconnects until ctx is done.
func (a *Agent) Run(ctx context.Context) error {
	header := http.Header{}
	header.Add("X-Api-Key", a.cfg.APIKey)

	a.logger.Info("Connecting to WebSocket...", zap.String("url", a.cfg.WsURL))

	for {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, a.cfg.WsURL, header)
		if err != nil {
			a.logger.Warn("Connection failed, retrying", zap.Error(err), zap.Duration("delay", a.reconnectDelay))
		} else {
			a.logger.Info("Connected")
			a.handleConnection(ctx, conn)
			conn.Close()
			a.logger.Info("Disconnected, reconnecting", zap.Duration("delay", a.reconnectDelay))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(a.reconnectDelay):
		}
	}
}

func (a *Agent) handleConnection(ctx context.Context, conn *websocket.Conn) {
	// Unblock ReadJSON when ctx ends.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	regMsg := model.WSMessage{
		Type:     model.MessageTypeRegister,
		AgentKey: a.cfg.AgentKey,
	}
	if err := conn.WriteJSON(regMsg); err != nil {
		a.logger.Warn("Failed to send register", zap.Error(err))
		return
	}

	for {
		var msg model.WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				a.logger.Warn("Read error", zap.Error(err))
			}
			return
		}

		switch msg.Type {
		case model.MessageTypeRegistered:
			a.logger.Info("Successfully registered with server")

		case model.MessageTypePing:
			a.logger.Debug("Received ping, sending pong")
			if err := conn.WriteJSON(model.WSMessage{Type: model.MessageTypePong, AgentKey: a.cfg.AgentKey}); err != nil {
				a.logger.Warn("Failed to send pong", zap.Error(err))
				return
			}

		case model.MessageTypePrintVouchers:
			a.logger.Info("Received print job", zap.String("job_id", msg.JobID), zap.String("site", msg.Site))
			if err := conn.WriteJSON(a.handlePrintJob(ctx, msg)); err != nil {
				a.logger.Warn("Failed to send job result", zap.String("job_id", msg.JobID), zap.Error(err))
				return
			}

		case model.MessageTypeUnregister:
			a.logger.Info("Server requested unregister")
			return

		default:
			a.logger.Warn("Unknown message type", zap.String("type", string(msg.Type)))
		}
	}
}

// handlePrintJob runs one job and builds the reply for the server.
func (a *Agent) handlePrintJob(ctx context.Context, msg model.WSMessage) model.WSMessage {
	reply := model.WSMessage{
		AgentKey: a.cfg.AgentKey,
		JobID:    msg.JobID,
	}

	sheet, err := a.generate(ctx, msg.Site)
	if err == nil {
		err = a.deliver(ctx, sheet)
	}
	if err != nil {
		level := a.logger.Error
		if errors.Is(err, model.ErrNoVouchers) {
			level = a.logger.Warn
		}
		level("Print job failed", zap.String("job_id", msg.JobID), zap.Error(err))
		reply.Type = model.MessageTypePrintFailed
		reply.Error = err.Error()
		return reply
	}

	a.logger.Info("Print job done", zap.String("job_id", msg.JobID), zap.Int("vouchers", sheet.Vouchers), zap.Int("pages", sheet.Pages))
	reply.Type = model.MessageTypePrinted
	reply.Vouchers = sheet.Vouchers
	reply.Pages = sheet.Pages
	return reply
}
