package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/relaykit/relaykit/internal/config"
)

// AdminStatsHandler exposes a single provider's key-pool health. It
// never returns key material, only counts and hint presence.
func AdminStatsHandler(cfg config.Provider, clients *ClientCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		snapshot := cfg.Snapshot()

		providerCfg, ok := snapshot.Provider(name)
		if !ok {
			providerCfg, ok = snapshot.LegacyProvider(name)
		}
		if !ok {
			writeErrorEnvelope(c, http.StatusBadRequest, "unknown provider", "INVALID_ARGUMENT")
			return
		}

		client := clients.Get(providerCfg)
		c.JSON(http.StatusOK, gin.H{
			"provider": providerCfg.Name,
			"flavor":   providerCfg.Flavor,
			"pool":     client.Pool.Stats(),
		})
	}
}
