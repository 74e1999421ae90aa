// Package dedupe exposes the engine driver over HTTP: a streaming NDJSON
// run endpoint and a best-effort cancel endpoint. It owns none of the
// engine's logic, matching the teacher's one-package-per-resource shape.
package dedupe

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/engine"
	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/models"
	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/tracing"
)

// runRegistry tracks the cancel func of every in-flight run, keyed by run
// id, the way the teacher keys relationshipSchemaCache by tenant.
var runRegistry sync.Map // run id (string) -> context.CancelFunc

// Register registers the dedupe run routes.
func Register(g *echo.Group) {
	g.POST("/runs", StartRun)
	g.DELETE("/runs/:id", CancelRun)
}

// StartRun decodes an EngineInput body, runs the engine, and streams its
// output as newline-delimited JSON, one EngineMessage per line.
func StartRun(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "dedupe_handler.StartRun")
	defer span.End()

	var input models.EngineInput
	if err := json.NewDecoder(c.Request().Body).Decode(&input); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(input.Records) == 0 {
		return httperror.NewHTTPError(http.StatusBadRequest, "records is required")
	}

	ctx, driver, err := ectoinject.GetContext[*engine.Driver](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get engine driver")
	}
	ctx, log, err := ectoinject.GetContext[ectologger.Logger](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get logger")
	}

	runID := uuid.NewString()
	runCtx, cancel := context.WithCancel(ctx)
	runRegistry.Store(runID, cancel)
	defer func() {
		cancel()
		runRegistry.Delete(runID)
	}()

	log.WithContext(ctx).WithFields(map[string]any{"run_id": runID}).Info("starting dedupe run")

	c.Response().Header().Set(echo.HeaderContentType, "application/x-ndjson")
	c.Response().Header().Set("X-Run-Id", runID)
	c.Response().WriteHeader(http.StatusOK)

	flusher, _ := c.Response().Writer.(http.Flusher)
	enc := json.NewEncoder(c.Response())

	for msg := range driver.Run(runCtx, input) {
		if err := enc.Encode(msg); err != nil {
			return nil
		}
		if flusher != nil {
			flusher.Flush()
		}
	}

	return nil
}

// CancelRun best-effort cancels an in-flight run.
func CancelRun(c echo.Context) error {
	ctx := c.Request().Context()
	_, span := tracing.StartSpan(ctx, "dedupe_handler.CancelRun")
	defer span.End()

	runID := c.Param("id")
	cancelAny, ok := runRegistry.Load(runID)
	if !ok {
		return httperror.NewHTTPError(http.StatusNotFound, "run not found")
	}

	cancelAny.(context.CancelFunc)()
	return c.JSON(http.StatusAccepted, map[string]string{"status": "cancelling"})
}
