// Package httpapi serves a Session as a small JSON API.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/idilsaglam/todoreducer/internal/app"
	"github.com/idilsaglam/todoreducer/internal/auth"
	"github.com/idilsaglam/todoreducer/internal/model"
	"github.com/idilsaglam/todoreducer/internal/persist"
	"github.com/idilsaglam/todoreducer/internal/reducer"
	"github.com/idilsaglam/todoreducer/internal/task"
)

const shutdownTimeout = 5 * time.Second

// Options configure a Server. A nil Token leaves the API open.
type Options struct {
	Token          *auth.TokenInfo
	Logger         *log.Logger
	SearchDebounce time.Duration
	// AccessLog enables Echo's request logger.
	AccessLog bool
}

type Server struct {
	sess     *app.Session
	log      *log.Logger
	echo     *echo.Echo
	searches *task.Debouncer
}

// TodosResponse is the body of GET /todos.
type TodosResponse struct {
	Todos  []model.Todo `json:"todos"`
	Filter model.Filter `json:"filter"`
	Search string       `json:"search,omitempty"`
	Stats  model.Stats  `json:"stats"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func New(sess *app.Session, opt Options) *Server {
	if opt.Logger == nil {
		opt.Logger = log.Default()
	}
	if opt.SearchDebounce <= 0 {
		opt.SearchDebounce = 500 * time.Millisecond
	}
	s := &Server{
		sess:     sess,
		log:      opt.Logger,
		echo:     echo.New(),
		searches: task.NewDebouncer(opt.SearchDebounce),
	}

	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	if opt.AccessLog {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.Recover())
	if opt.Token != nil {
		token := opt.Token
		e.Use(middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
			Skipper: func(c echo.Context) bool { return c.Path() == "/health" },
			Validator: func(key string, c echo.Context) (bool, error) {
				return token.Matches(key), nil
			},
		}))
	}

	e.GET("/health", s.health)
	e.GET("/todos", s.listTodos)
	e.GET("/state", s.state)
	e.POST("/actions", s.dispatch)
	e.POST("/save", s.save)
	e.POST("/clear", s.clear)
	e.GET("/export", s.export)
	return s
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Serve listens on addr until ctx ends, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Printf("listening on %s", addr)
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	s.searches.Cancel()
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"phase":  s.sess.Phase().String(),
	})
}

func (s *Server) listTodos(c echo.Context) error {
	search := c.QueryParam("search")
	st := s.sess.State()
	visible := reducer.Visible(st.Todos, st.Filter, search)
	if search != "" {
		n := len(visible)
		s.searches.Trigger(func() { s.log.Printf("search %q matched %d todos", search, n) })
	}
	return c.JSON(http.StatusOK, TodosResponse{
		Todos:  visible,
		Filter: st.Filter,
		Search: search,
		Stats:  st.Stats,
	})
}

func (s *Server) state(c echo.Context) error {
	return c.JSON(http.StatusOK, s.sess.State())
}

func (s *Server) dispatch(c echo.Context) error {
	var a reducer.Action
	if err := c.Bind(&a); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid action: " + err.Error()})
	}
	if err := validate(a); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, s.sess.Dispatch(a))
}

// validate rejects input the reducer would silently ignore or store blank.
func validate(a reducer.Action) error {
	if !a.Kind.Known() {
		return fmt.Errorf("unknown action type %q", a.Kind)
	}
	switch a.Kind {
	case reducer.KindAdd:
		if strings.TrimSpace(a.Payload.Text) == "" {
			return errors.New("todo text cannot be empty")
		}
	case reducer.KindUpdate:
		if strings.TrimSpace(a.Payload.NewText) == "" {
			return errors.New("todo text cannot be empty")
		}
	}
	return nil
}

func (s *Server) save(c echo.Context) error {
	if err := s.sess.ManualSave(); err != nil {
		s.log.Printf("manual save failed: %v", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "saved"})
}

func (s *Server) clear(c echo.Context) error {
	st, err := s.sess.ClearAll()
	if err != nil {
		s.log.Printf("clear all failed: %v", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, st)
}

func (s *Server) export(c echo.Context) error {
	f, err := persist.ParseFormat(c.QueryParam("format"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
	ctype := echo.MIMEApplicationJSON
	if f == persist.FormatYAML {
		ctype = "application/yaml"
	}
	name := persist.ExportName(time.Now(), f)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	c.Response().Header().Set(echo.HeaderContentType, ctype)
	c.Response().WriteHeader(http.StatusOK)
	return persist.Export(c.Response(), s.sess.State().Todos, f)
}
