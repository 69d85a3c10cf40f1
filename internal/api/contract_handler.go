package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/trendfinder-api/internal/contract"
	"github.com/phrazzld/trendfinder-api/internal/platform/logger"
)

// ContractHandler serves the embedded OpenAPI document so deployed instances
// publish the exact contract they were built against.
type ContractHandler struct {
	logger *slog.Logger
}

// NewContractHandler creates a new ContractHandler
func NewContractHandler(logger *slog.Logger) *ContractHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ContractHandler")
	}
	return &ContractHandler{
		logger: logger.With(slog.String("component", "contract_handler")),
	}
}

// GetContract handles GET /openapi.yaml requests.
func (h *ContractHandler) GetContract(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(contract.Document()); err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).Error(
			"failed to write contract response",
			slog.String("error", err.Error()))
	}
}
