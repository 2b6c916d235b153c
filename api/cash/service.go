package cash

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"TreasuryDash/api"
	"TreasuryDash/internal/config"
	"TreasuryDash/internal/logger"
	"TreasuryDash/internal/serviceiface"
	"TreasuryDash/internal/treasury"
)

type CashService struct {
	config map[string]interface{}
	env    *treasury.Env

	mu     sync.Mutex
	server *http.Server
	addr   string
}

func NewCashService(cfg map[string]interface{}, env *treasury.Env) serviceiface.Service {
	return &CashService{config: cfg, env: env}
}

func (s *CashService) Name() string {
	return "cash"
}

func (s *CashService) listenAddr() string {
	port := config.DefaultHTTPPort
	switch v := s.config["port"].(type) {
	case int:
		port = v
	case float64:
		port = int(v)
	}
	host, _ := s.config["host"].(string)
	return fmt.Sprintf("%s:%d", host, port)
}

// Handler is the full HTTP stack of the service.
func (s *CashService) Handler() http.Handler {
	return api.CORS(NewRouter(NewHandler(s.env)))
}

func (s *CashService) Start() error {
	log := logger.WithComponent("cash")

	ln, err := net.Listen("tcp", s.listenAddr())
	if err != nil {
		return fmt.Errorf("cash service listen: %w", err)
	}
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.mu.Lock()
	s.server, s.addr = srv, ln.Addr().String()
	s.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Cash service failed")
		}
	}()
	logger.Audit(fmt.Sprintf("Cash service started on %s", ln.Addr()))
	log.Info().Str("addr", ln.Addr().String()).Msg("Cash service started")
	return nil
}

// Addr is the address the service listens on once started.
func (s *CashService) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

func (s *CashService) Stop() error {
	s.mu.Lock()
	srv := s.server
	s.server = nil
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	if s.env != nil && s.env.SSE != nil {
		s.env.SSE.Stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("cash service shutdown: %w", err)
	}
	logger.WithComponent("cash").Info().Msg("Cash service stopped")
	return nil
}
