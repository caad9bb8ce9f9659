package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/synapse-kb/synapse/backend/internal/db"
	"github.com/synapse-kb/synapse/backend/internal/server/middleware"
	"github.com/synapse-kb/synapse/backend/internal/server/util"
	iutil "github.com/synapse-kb/synapse/backend/internal/util"
	"github.com/synapse-kb/synapse/backend/pkg/graph"
	"github.com/synapse-kb/synapse/backend/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/pgvector/pgvector-go"
)

const (
	querySubgraphLimit = 20
	queryExcerptLimit  = 3
)

// relevantExcerpts embeds the question and pulls the closest stored units
// so the answer can quote the source documents. Failures just mean the
// answer works from the graph alone.
func relevantExcerpts(ctx context.Context, app *middleware.App, userID int64, query string) string {
	vec, err := app.AiClient.Embedding(ctx, []byte(query))
	if err != nil {
		logger.Debug("Query embedding failed", "err", err)
		return ""
	}

	q := db.New(app.DBConn)
	units, err := q.SearchUnitsByEmbedding(ctx, userID, pgvector.NewVector(vec), queryExcerptLimit)
	if err != nil || len(units) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Document excerpts:\n")
	for _, unit := range units {
		fmt.Fprintf(&b, "- %s\n", unit.Content)
	}
	return b.String()
}

// QueryGraphHandler answers a natural language question against the
// caller's knowledge graph. Candidate entity names are pulled from the
// question, the matching subgraph is loaded, and the answer comes from
// the language model when one is configured or from a canned summary
// otherwise. Every answered query is recorded in the history.
func QueryGraphHandler(c echo.Context) error {
	type queryBody struct {
		Query string `json:"query"`
	}

	type queryResponse struct {
		Message   string          `json:"message,omitempty"`
		ID        int64           `json:"id,omitempty"`
		Query     string          `json:"query,omitempty"`
		Response  string          `json:"response,omitempty"`
		GraphData graph.GraphData `json:"graphData"`
		Timestamp time.Time       `json:"timestamp,omitzero"`
	}

	data := new(queryBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, queryResponse{
			Message:   "Invalid request body",
			GraphData: graph.Empty(),
		})
	}
	if strings.TrimSpace(data.Query) == "" {
		return c.JSON(http.StatusBadRequest, queryResponse{
			Message:   "Query must not be empty",
			GraphData: graph.Empty(),
		})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, queryResponse{
			Message:   "Unauthorized",
			GraphData: graph.Empty(),
		})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	term := ""
	if terms := util.SearchTerms(data.Query); len(terms) > 0 {
		term = terms[0]
	}

	subgraph, err := app.GraphStore().SearchSubgraph(ctx, user.UserID, term, querySubgraphLimit)
	if err != nil {
		logger.Error("Subgraph search failed", "user_id", user.UserID, "term", term, "err", err)
		return c.JSON(http.StatusInternalServerError, queryResponse{
			Message:   "Failed to query graph",
			GraphData: graph.Empty(),
		})
	}

	response := ""
	if app.AiClient != nil {
		graphContext := util.GraphContext(subgraph)
		if excerpts := relevantExcerpts(ctx, app, user.UserID, data.Query); excerpts != "" {
			graphContext += excerpts
		}

		answer, err := app.AiClient.Answer(ctx, data.Query, graphContext)
		if err != nil {
			logger.Warn("Model answer failed, using graph summary", "err", err)
		} else {
			response = answer
		}
	}
	if response == "" {
		response = util.HeuristicAnswer(term, subgraph)
	}

	graphJSON, err := json.Marshal(subgraph)
	if err != nil {
		graphJSON = []byte(`{"nodes":[],"links":[]}`)
	}

	q := db.New(app.DBConn)
	record, err := q.CreateQuery(ctx, db.CreateQueryParams{
		UserID:        user.UserID,
		Text:          iutil.SanitizePostgresText(data.Query),
		Response:      iutil.SanitizePostgresText(response),
		ResponseGraph: graphJSON,
	})
	if err != nil {
		logger.Error("Failed to record query", "user_id", user.UserID, "err", err)
		return c.JSON(http.StatusInternalServerError, queryResponse{
			Message:   "Failed to record query",
			GraphData: graph.Empty(),
		})
	}

	return c.JSON(http.StatusOK, queryResponse{
		ID:        record.ID,
		Query:     record.Text,
		Response:  record.Response,
		GraphData: subgraph,
		Timestamp: record.Timestamp,
	})
}
