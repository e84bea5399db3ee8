package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
)

// handleHealthz reports process and host vitals so a probe can tell a
// dead node from a quiet one. Host metrics that cannot be collected
// are omitted rather than failing the check.
func (s *Server) handleHealthz(c *gin.Context) {
	ctx := c.Request.Context()
	out := gin.H{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(s.start).Seconds()),
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		out["mem_used_percent"] = vm.UsedPercent
	}
	if avg, err := load.AvgWithContext(ctx); err == nil {
		out["load1"] = avg.Load1
	}
	if up, err := host.UptimeWithContext(ctx); err == nil {
		out["host_uptime_seconds"] = up
	}
	c.JSON(http.StatusOK, out)
}
