package web

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"SpreadSentinel/internal/ledger"
	"SpreadSentinel/internal/model"
	"SpreadSentinel/internal/recorder"
	"SpreadSentinel/internal/scheduler"
	"SpreadSentinel/internal/screener"
)

// Server exposes the tracker over a JSON API for the dashboard.
type Server struct {
	Scheduler *scheduler.Scheduler
	Ledger    *ledger.Manager
	Recorder  recorder.Recorder
	Addr      string
}

// NewServer creates a new Server.
func NewServer(addr string, sched *scheduler.Scheduler, lg *ledger.Manager, rec recorder.Recorder) *Server {
	return &Server{Scheduler: sched, Ledger: lg, Recorder: rec, Addr: addr}
}

// Routes builds the request mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/watchlist", s.handleWatchlist)
	mux.HandleFunc("/api/prediction", s.handlePrediction)
	mux.HandleFunc("/api/suggestions", s.handleSuggestions)
	mux.HandleFunc("/api/trades", s.handleTrades)
	mux.HandleFunc("/api/trades/close", s.handleCloseTrade)
	mux.HandleFunc("/api/trades/edit", s.handleEditTrade)
	mux.HandleFunc("/api/trades/delete", s.handleDeleteTrade)
	mux.HandleFunc("/api/trades/review", s.handleReviewTrades)
	mux.HandleFunc("/api/pnl", s.handlePnL)
	mux.HandleFunc("/api/screener", s.handleScreener)
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/history", s.handleHistory)
	return mux
}

// ListenAndServe starts the HTTP server and blocks until it exits.
func (s *Server) ListenAndServe() error {
	log.Printf("[INFO] dashboard listening on %s", s.Addr)
	return http.ListenAndServe(s.Addr, s.Routes())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[ERROR] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"service":    "SpreadSentinel",
		"openTrades": len(s.Ledger.Open()),
		"watchlist":  len(s.Scheduler.Watchlist),
		"time":       time.Now().Format(time.RFC3339),
	})
}

// maxForecastAge is how old the newest cached forecast may get before a
// watchlist request triggers a refresh on its own.
const maxForecastAge = 24 * time.Hour

func (s *Server) handleWatchlist(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET only")
		return
	}
	if r.URL.Query().Get("refresh") == "1" || s.Scheduler.Cache.Stale(maxForecastAge) {
		s.Scheduler.RefreshWatchlist()
	}
	writeJSON(w, http.StatusOK, s.Scheduler.Cache.Watchlist())
}

func (s *Server) handlePrediction(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(r.URL.Query().Get("ticker"))
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker parameter required")
		return
	}
	pred, ok := s.Scheduler.Cache.Get(ticker)
	if !ok {
		// Not on the watchlist yet; forecast on demand.
		p, err := s.Scheduler.RefreshTicker(ticker)
		if err != nil {
			writeError(w, http.StatusNotFound, "no forecast for "+ticker)
			return
		}
		pred = *p
	}
	writeJSON(w, http.StatusOK, pred)
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET only")
		return
	}
	writeJSON(w, http.StatusOK, s.Scheduler.Suggestions())
}

// handleTrades lists the ledger on GET and records a filled trade on POST.
func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		switch r.URL.Query().Get("status") {
		case "open":
			writeJSON(w, http.StatusOK, s.Ledger.Open())
		case "closed":
			writeJSON(w, http.StatusOK, s.Ledger.Closed())
		default:
			writeJSON(w, http.StatusOK, s.Ledger.All())
		}
	case http.MethodPost:
		var sug model.TradeSuggestion
		if err := json.NewDecoder(r.Body).Decode(&sug); err != nil {
			writeError(w, http.StatusBadRequest, "invalid trade payload: "+err.Error())
			return
		}
		if sug.Symbol == "" || len(sug.Legs) == 0 {
			writeError(w, http.StatusBadRequest, "symbol and legs are required")
			return
		}
		trade, err := s.Ledger.Add(&sug)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, trade)
	default:
		writeError(w, http.StatusMethodNotAllowed, "GET or POST only")
	}
}

type closeRequest struct {
	ID        string  `json:"id"`
	ExitPrice float64 `json:"exitPrice"`
	Reason    string  `json:"reason"`
}

func (s *Server) handleCloseTrade(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	var req closeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid close payload: "+err.Error())
		return
	}
	trade, err := s.Ledger.Close(req.ID, req.ExitPrice, req.Reason)
	if err != nil {
		if errors.Is(err, ledger.ErrTradeNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, trade)
}

type editRequest struct {
	ID     string   `json:"id"`
	Notes  *string  `json:"notes"`
	Credit *float64 `json:"credit"`
}

func (s *Server) handleEditTrade(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid edit payload: "+err.Error())
		return
	}
	trade, err := s.Ledger.Edit(req.ID, func(t *model.Trade) {
		if req.Notes != nil {
			t.Notes = *req.Notes
		}
		if req.Credit != nil {
			t.Credit = *req.Credit
		}
	})
	if err != nil {
		if errors.Is(err, ledger.ErrTradeNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, trade)
}

func (s *Server) handleDeleteTrade(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid delete payload: "+err.Error())
		return
	}
	if err := s.Ledger.Delete(req.ID); err != nil {
		if errors.Is(err, ledger.ErrTradeNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": req.ID})
}

func (s *Server) handleReviewTrades(w http.ResponseWriter, r *http.Request) {
	trades, advice := s.Scheduler.ReviewTrades()
	writeJSON(w, http.StatusOK, map[string]any{
		"trades": trades,
		"advice": advice,
	})
}

func (s *Server) handlePnL(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Ledger.WeeklyPnL())
}

func (s *Server) handleScreener(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.URL.Query().Get("run") != "1" {
		// Serve the latest stored run when not explicitly re-running.
		runs, err := s.Recorder.RecentRuns(1)
		if err == nil && len(runs) > 0 {
			writeJSON(w, http.StatusOK, runs[0])
			return
		}
	}
	writeJSON(w, http.StatusOK, s.Scheduler.RunScreeningNow())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, screener.MarketHealth(s.Scheduler.Collector.Fetcher))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	runs, err := s.Recorder.RecentRuns(10)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, runs)
}
