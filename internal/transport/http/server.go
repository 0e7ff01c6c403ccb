// Package http 暴露计算引擎的 HTTP 面：单次计算与批量派发。
package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chartcore/internal/engine"
	"chartcore/internal/market"
	"chartcore/internal/store"
)

// Server 包装 gin 路由、派发器与 K 线存储。
type Server struct {
	addr       string
	router     *gin.Engine
	dispatcher *engine.Dispatcher
	bars       store.BarStore
}

type Config struct {
	Addr    string
	Workers int
	// Store 为 nil 时退回进程内存储。
	Store store.BarStore
}

func NewServer(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":9980"
	}
	if cfg.Store == nil {
		cfg.Store = store.NewMemoryBarStore(0)
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	s := &Server{
		addr:       cfg.Addr,
		router:     router,
		dispatcher: engine.NewDispatcher(cfg.Workers),
		bars:       cfg.Store,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	api := s.router.Group("/api")
	api.GET("/kinds", s.handleKinds)
	api.POST("/compute", s.handleCompute)
	api.POST("/compute/batch", s.handleBatch)
	api.GET("/bars/:symbol/:interval", s.handleGetBars)
	api.POST("/bars/:symbol/:interval", s.handlePutBars)
}

func (s *Server) Run() error { return s.router.Run(s.addr) }

// Router exposes the underlying engine for tests.
func (s *Server) Router() http.Handler { return s.router }

func (s *Server) handleKinds(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"kinds": engine.Kinds()})
}

func (s *Server) handleCompute(c *gin.Context) {
	var req struct {
		Kind     string           `json:"kind" binding:"required"`
		Params   engine.Params    `json:"params"`
		Data     []market.Bar     `json:"data"`
		Symbol   string           `json:"symbol"`
		Interval string           `json:"interval"`
		Breadth  []market.Breadth `json:"breadth"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// 请求没带数据时按 symbol+interval 从存储取。
	bars := req.Data
	if len(bars) == 0 && len(req.Breadth) == 0 && req.Symbol != "" {
		if req.Interval == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "interval required with symbol"})
			return
		}
		stored, err := s.bars.Get(c.Request.Context(), req.Symbol, req.Interval)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if len(stored) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "no stored bars for " + req.Symbol + " " + req.Interval})
			return
		}
		bars = stored
	}
	var (
		res engine.Result
		err error
	)
	if len(req.Breadth) > 0 {
		res, err = engine.ComputeBreadth(req.Kind, req.Breadth)
	} else {
		res, err = engine.Compute(req.Kind, bars, req.Params)
	}
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, engine.ErrUnknownKind) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"kind": req.Kind, "result": res})
}

func (s *Server) handlePutBars(c *gin.Context) {
	var bars []market.Bar
	if err := c.ShouldBindJSON(&bars); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	symbol, interval := c.Param("symbol"), c.Param("interval")
	if err := s.bars.Put(c.Request.Context(), symbol, interval, bars); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stored": len(bars)})
}

func (s *Server) handleGetBars(c *gin.Context) {
	bars, err := s.bars.Get(c.Request.Context(), c.Param("symbol"), c.Param("interval"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bars": bars})
}

// handleBatch 批量派发：每个请求独立成败，未知 kind 只坏自己那条。
func (s *Server) handleBatch(c *gin.Context) {
	var reqs []engine.Request
	if err := c.ShouldBindJSON(&reqs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	responses := s.dispatcher.Submit(c.Request.Context(), reqs)
	c.JSON(http.StatusOK, gin.H{"responses": responses})
}
