// Package service exposes the application over HTTP. It is the boundary the
// view composition binds to: the table reads /users, the modal form drives
// the form session through the /form endpoints.
package service

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"gitlab.com/william.mucha/users-service/internal/catalog"
	"gitlab.com/william.mucha/users-service/internal/codec"
	"gitlab.com/william.mucha/users-service/internal/model"
	"gitlab.com/william.mucha/users-service/internal/session"
	"gitlab.com/william.mucha/users-service/internal/store"
)

// Server wires the gateway and the form session into HTTP handlers.
type Server struct {
	gateway store.Gateway
	session *session.Session
	log     *zap.Logger
}

// NewServer builds the HTTP layer on top of an explicit gateway and session.
func NewServer(gateway store.Gateway, sess *session.Session, log *zap.Logger) *Server {
	return &Server{gateway: gateway, session: sess, log: log}
}

// SetupHttpRouter initializes the REST API router and registers all endpoints.
func (s *Server) SetupHttpRouter() *gin.Engine {
	var router *gin.Engine
	if strings.EqualFold(os.Getenv("GIN_LOGGING"), "off") {
		fmt.Println("Turning off HTTP request logging.")
		router = gin.New()
	} else {
		router = gin.Default()
	}
	router.GET("/users", s.listUsers)
	router.DELETE("/users/:id", s.deleteUserByID)
	router.GET("/form", s.formSnapshot)
	router.POST("/form/add", s.openAdd)
	router.POST("/form/edit/:id", s.openEdit)
	router.POST("/form/country", s.changeCountry)
	router.POST("/form/submit", s.submitForm)
	router.POST("/form/cancel", s.cancelForm)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return router
}

// formResponse is the state the modal needs: the current mode and draft plus
// the choices to offer in the two select widgets.
type formResponse struct {
	Mode           session.Mode    `json:"mode"`
	Draft          model.FormDraft `json:"draft"`
	CountryOptions []model.Option  `json:"countryOptions"`
	CityOptions    []model.Option  `json:"cityOptions"`
}

func formStateOf(mode session.Mode, draft model.FormDraft) formResponse {
	return formResponse{
		Mode:           mode,
		Draft:          draft,
		CountryOptions: catalog.CountryOptions(),
		CityOptions:    catalog.CityOptions(draft.Country.Value),
	}
}

// listUsers responds with all records projected into table rows. An empty
// table is an empty list, not an error.
//
// Example REST API call:
//
//	> curl "http://localhost:8080/users"
func (s *Server) listUsers(c *gin.Context) {
	recs, err := s.gateway.List(c.Request.Context())
	if err != nil {
		s.abortStoreError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, codec.Rows(recs))
}

// deleteUserByID removes the record behind a row's delete trigger and
// responds with the refreshed rows. Deleting an id that is already gone is
// success.
//
// Example REST API call:
//
//	> curl http://localhost:8080/users/7d4e... --request "DELETE"
func (s *Server) deleteUserByID(c *gin.Context) {
	if err := s.gateway.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.abortStoreError(c, err)
		return
	}
	recs, err := s.gateway.List(c.Request.Context())
	if err != nil {
		s.abortStoreError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, codec.Rows(recs))
}

// formSnapshot responds with the current form state.
func (s *Server) formSnapshot(c *gin.Context) {
	mode, draft := s.session.Snapshot()
	c.IndentedJSON(http.StatusOK, formStateOf(mode, draft))
}

// openAdd opens the form in Add mode with an all-empty draft.
func (s *Server) openAdd(c *gin.Context) {
	draft := s.session.OpenCreate()
	c.IndentedJSON(http.StatusOK, formStateOf(session.OpenCreate, draft))
}

// openEdit re-fetches the row's record and opens the form in Edit mode.
func (s *Server) openEdit(c *gin.Context) {
	draft, err := s.session.OpenEdit(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.abortStoreError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, formStateOf(session.OpenEdit, draft))
}

// changeCountry records a country selection and responds with the filtered
// city options plus the possibly cleared draft.
func (s *Server) changeCountry(c *gin.Context) {
	var body struct {
		Country model.Option `json:"country"`
	}
	if err := c.BindJSON(&body); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid JSON"})
		return
	}
	options, err := s.session.SetCountry(body.Country)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"message": err.Error()})
		return
	}
	mode, draft := s.session.Snapshot()
	state := formStateOf(mode, draft)
	state.CityOptions = options
	c.IndentedJSON(http.StatusOK, state)
}

// submitForm validates and persists the submitted draft. Validation failures
// keep the form open and respond with per-field messages; success closes the
// form and responds with the refreshed rows.
func (s *Server) submitForm(c *gin.Context) {
	var draft model.FormDraft
	if err := c.BindJSON(&draft); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid JSON"})
		return
	}
	if err := s.session.Submit(c.Request.Context(), draft); err != nil {
		verr := &codec.ValidationError{}
		switch {
		case errors.As(err, &verr):
			c.AbortWithStatusJSON(http.StatusBadRequest, verr)
		case errors.Is(err, session.ErrClosed), errors.Is(err, session.ErrBusy):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"message": err.Error()})
		default:
			s.abortStoreError(c, err)
		}
		return
	}

	// Consume the session's refresh signal and re-pull the list for the
	// response; the displayed table always reflects the store after a write.
	select {
	case <-s.session.Refresh():
	default:
	}
	recs, err := s.gateway.List(c.Request.Context())
	if err != nil {
		s.abortStoreError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, codec.Rows(recs))
}

// cancelForm discards the draft and closes the form without a store call.
func (s *Server) cancelForm(c *gin.Context) {
	s.session.Cancel()
	c.IndentedJSON(http.StatusOK, gin.H{"message": "form closed"})
}

// abortStoreError maps gateway failures onto the error taxonomy: missing
// record, unavailable store, or an unexpected failure. Nothing here is fatal;
// the caller keeps its current view.
func (s *Server) abortStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "user not found"})
	case errors.Is(err, store.ErrUnavailable):
		s.log.Error("store unavailable", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"message": "store unavailable"})
	default:
		s.log.Error("unexpected failure", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
	}
}
