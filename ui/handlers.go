package ui

import (
	"net/http"
	"strconv"
	"strings"

	"cotdex/domain/core"
	"cotdex/domain/network"
	"cotdex/internal/errors"
	"cotdex/ui/middleware"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleMainNetwork(c *gin.Context) {
	params, err := network.WholeNetworkProfile.ParseParams(c.GetQuery)
	if err != nil {
		s.fail(c, err)
		return
	}
	payload, err := s.network.MainNetwork(c.Request.Context(), params)
	if err != nil {
		s.fail(c, err)
		return
	}
	writePayload(c, payload)
}

func (s *Server) handleSingleDisease(c *gin.Context) {
	params, err := network.SingleDiseaseProfile.ParseParams(c.GetQuery)
	if err != nil {
		s.fail(c, err)
		return
	}
	payload, err := s.network.SingleDisease(c.Request.Context(), params, network.DiseaseCode(c.Query("disease")))
	if err != nil {
		s.fail(c, err)
		return
	}
	writePayload(c, payload)
}

func (s *Server) handleSubNetwork(c *gin.Context) {
	params, err := network.SubNetworkProfile.ParseParams(c.GetQuery)
	if err != nil {
		s.fail(c, err)
		return
	}
	seeds, err := network.ParseSeeds(c.Query("diseases"))
	if err != nil {
		s.fail(c, err)
		return
	}
	payload, err := s.network.SubNetwork(c.Request.Context(), params, seeds)
	if err != nil {
		s.fail(c, err)
		return
	}
	writePayload(c, payload)
}

func (s *Server) handleCheckConnection(c *gin.Context) {
	var seeds []network.DiseaseCode
	for _, code := range strings.Split(c.Query("diseases"), ",") {
		seeds = append(seeds, network.DiseaseCode(code))
	}
	res, err := s.network.CheckConnection(c.Request.Context(), seeds)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleConnectedDiseases(c *gin.Context) {
	codes, err := s.network.ConnectedDiseases(c.Request.Context(), network.DiseaseCode(c.Query("disease")))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"connected": codes})
}

func (s *Server) handleSummary(c *gin.Context) {
	params, err := network.WholeNetworkProfile.ParseParams(c.GetQuery)
	if err != nil {
		s.fail(c, err)
		return
	}
	var seeds []network.DiseaseCode
	if raw := strings.TrimSpace(c.Query("diseases")); raw != "" {
		if seeds, err = network.ParseSeeds(raw); err != nil {
			s.fail(c, err)
			return
		}
	}
	summary, err := s.network.Summary(c.Request.Context(), params, seeds)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleDiseases(c *gin.Context) {
	diseases, err := s.network.Diseases(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"diseases": diseases})
}

// handleDetail serves ?type=node&node_id=X or
// ?type=edge&source=X&target=Y&follow_up=N.
func (s *Server) handleDetail(c *gin.Context) {
	q := network.AttributeQuery{Kind: network.AttributeKind(c.Query("type"))}
	switch q.Kind {
	case network.AttributeKindNode:
		q.Node = network.DiseaseCode(strings.TrimSpace(c.Query("node_id")))
	case network.AttributeKindEdge:
		q.Cause = network.DiseaseCode(strings.TrimSpace(c.Query("source")))
		q.Outcome = network.DiseaseCode(strings.TrimSpace(c.Query("target")))
		if raw := strings.TrimSpace(c.Query("follow_up")); raw != "" {
			fu, err := strconv.Atoi(raw)
			if err != nil {
				s.fail(c, errors.InvalidParameter("follow_up must be a positive integer, got %q", raw))
				return
			}
			q.FollowUp = fu
		}
	}

	breakdown, err := s.network.Detail(c.Request.Context(), q)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, breakdown)
}

func (s *Server) handleFlushCache(c *gin.Context) {
	if err := s.network.FlushCache(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// writePayload sends a pre-encoded view with a content-derived ETag, so an
// unchanged cached view costs the client a 304.
func writePayload(c *gin.Context, payload []byte) {
	digest := core.DigestOf(payload)
	c.Header("ETag", digest.ETag())
	if digest.MatchesAny(c.GetHeader("If-None-Match")) {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

// fail writes the error body with the status its code maps to.
func (s *Server) fail(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := code.HTTPStatus()

	requestID := c.GetString(middleware.RequestIDKey)
	if status >= http.StatusInternalServerError {
		s.log.Error("%s %s [%s]: %v", c.Request.Method, c.Request.URL.Path, requestID, err)
	} else {
		s.log.Debug("%s %s [%s]: %v", c.Request.Method, c.Request.URL.Path, requestID, err)
	}

	c.JSON(status, gin.H{
		"error":      err.Error(),
		"code":       code,
		"request_id": requestID,
	})
}
