package api

import (
	"math"
	"net/http"
	"runtime"
	"strconv"

	"github.com/annel0/voxelworld/internal/vec"
	"github.com/annel0/voxelworld/internal/world"
	"github.com/gin-gonic/gin"
	"github.com/go-gl/mathgl/mgl64"
)

// maxRaycastDistance верхняя граница длины луча в запросе
const maxRaycastDistance = 1024

// BlockInfo описание блока в ответах API
type BlockInfo struct {
	X            int    `json:"x"`
	Y            int    `json:"y"`
	Z            int    `json:"z"`
	Type         string `json:"type"`
	TypeIndex    uint8  `json:"type_index"`
	OutdoorLight uint8  `json:"outdoor_light"`
	IndoorLight  uint8  `json:"indoor_light"`
	Solid        bool   `json:"solid"`
	Opaque       bool   `json:"opaque"`
	Sky          bool   `json:"sky"`
}

// SetBlockRequest запрос на смену типа блока
type SetBlockRequest struct {
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Z    int    `json:"z"`
	Type string `json:"type" binding:"required"`
}

// RaycastRequest запрос трассировки луча
type RaycastRequest struct {
	Start       [3]float64 `json:"start"`
	Direction   [3]float64 `json:"direction"`
	MaxDistance float64    `json:"max_distance"`
}

// RaycastResponse результат трассировки
type RaycastResponse struct {
	DidImpact      bool       `json:"did_impact"`
	End            [3]float64 `json:"end"`
	ImpactDistance float64    `json:"impact_distance"`
	ImpactFraction float64    `json:"impact_fraction"`
	ImpactNormal   [3]float64 `json:"impact_normal"`
	Block          *BlockInfo `json:"block,omitempty"`
}

func blockInfo(locator world.BlockLocator) *BlockInfo {
	b := locator.Block()
	local := locator.Coords()
	origin := locator.Chunk().Coords()
	t := locator.Chunk().BlockType(locator.Index())

	return &BlockInfo{
		X:            origin.X*world.ChunkDimensionsX + local.X,
		Y:            origin.Y*world.ChunkDimensionsY + local.Y,
		Z:            local.Z,
		Type:         t.Name,
		TypeIndex:    b.TypeIndex(),
		OutdoorLight: b.OutdoorLight(),
		IndoorLight:  b.IndoorLight(),
		Solid:        b.IsSolid(),
		Opaque:       b.IsFullyOpaque(),
		Sky:          b.IsPartOfSky(),
	}
}

// queryInts разбирает обязательные целочисленные параметры запроса
func queryInts(c *gin.Context, names ...string) ([]int, bool) {
	values := make([]int, len(names))
	for i, name := range names {
		v, err := strconv.Atoi(c.Query(name))
		if err != nil {
			badRequest(c, "Некорректный параметр "+name)
			return nil, false
		}
		values[i] = v
	}
	return values, true
}

// handleHealth обрабатывает health check
func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": rs.metrics.GetUptime(),
	})
}

// handleChunks возвращает список активных чанков
func (rs *RestServer) handleChunks(c *gin.Context) {
	var coords []vec.Vec2
	if !rs.withWorld(c, func(w *world.World) {
		coords = w.ActiveChunkCoords()
	}) {
		return
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Активные чанки",
		Data:    coords,
	})
}

// handleHeight возвращает высоту поверхности мирового столбца
func (rs *RestServer) handleHeight(c *gin.Context) {
	xy, ok := queryInts(c, "x", "y")
	if !ok {
		return
	}

	var height int
	var loaded bool
	if !rs.withWorld(c, func(w *world.World) {
		height, loaded = w.HeightAt(xy[0], xy[1])
	}) {
		return
	}

	if !loaded {
		c.JSON(http.StatusNotFound, GenericResponse{Success: false, Message: "Чанк не загружен"})
		return
	}
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Высота столбца",
		Data:    gin.H{"x": xy[0], "y": xy[1], "height": height},
	})
}

// handleGetBlock возвращает блок по мировым координатам
func (rs *RestServer) handleGetBlock(c *gin.Context) {
	xyz, ok := queryInts(c, "x", "y", "z")
	if !ok {
		return
	}

	var info *BlockInfo
	if !rs.withWorld(c, func(w *world.World) {
		locator := w.BlockLocatorForBlockCoords(vec.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]})
		if locator.IsValid() {
			info = blockInfo(locator)
		}
	}) {
		return
	}

	if info == nil {
		c.JSON(http.StatusNotFound, GenericResponse{Success: false, Message: "Блок не загружен"})
		return
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Блок", Data: info})
}

// handleSetBlock меняет тип блока по имени
func (rs *RestServer) handleSetBlock(c *gin.Context) {
	var req SetBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Некорректный запрос: "+err.Error())
		return
	}

	var (
		info        *BlockInfo
		unknownType bool
	)
	if !rs.withWorld(c, func(w *world.World) {
		t, found := w.Registry().LookupByName(req.Type)
		if !found {
			unknownType = true
			return
		}
		locator := w.BlockLocatorForBlockCoords(vec.Vec3{X: req.X, Y: req.Y, Z: req.Z})
		if !w.SetBlockType(locator, t) {
			return
		}
		w.UpdateLighting()
		info = blockInfo(locator)
	}) {
		return
	}

	switch {
	case unknownType:
		badRequest(c, "Неизвестный тип блока "+req.Type)
	case info == nil:
		c.JSON(http.StatusNotFound, GenericResponse{Success: false, Message: "Блок не загружен"})
	default:
		rs.logger.Info("🧱 Блок (%d,%d,%d) -> %s", req.X, req.Y, req.Z, req.Type)
		c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Блок изменён", Data: info})
	}
}

// handleRaycast трассирует луч по загруженным чанкам
func (rs *RestServer) handleRaycast(c *gin.Context) {
	var req RaycastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Некорректный запрос: "+err.Error())
		return
	}
	if req.MaxDistance <= 0 || req.MaxDistance > maxRaycastDistance {
		badRequest(c, "max_distance должен быть в (0, 1024]")
		return
	}
	direction := mgl64.Vec3(req.Direction)
	if direction.Len() == 0 || math.IsNaN(direction.Len()) {
		badRequest(c, "Нулевое направление луча")
		return
	}

	var resp RaycastResponse
	if !rs.withWorld(c, func(w *world.World) {
		result := w.Raycast(mgl64.Vec3(req.Start), direction, req.MaxDistance)
		resp = RaycastResponse{
			DidImpact:      result.DidImpact,
			End:            result.End,
			ImpactDistance: result.ImpactDistance,
			ImpactFraction: result.ImpactFraction,
			ImpactNormal:   result.ImpactNormal,
		}
		if result.DidImpact {
			resp.Block = blockInfo(result.ImpactBlock)
		}
	}) {
		return
	}

	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Результат трассировки", Data: resp})
}

// handleStats возвращает статистику мира и процесса
func (rs *RestServer) handleStats(c *gin.Context) {
	var stats world.Stats
	if !rs.withWorld(c, func(w *world.World) {
		stats = w.Stats()
	}) {
		return
	}

	cpu, err := rs.metrics.GetCPUUsage()
	if err != nil {
		cpu = -1
	}
	rss, err := rs.metrics.GetRSS()
	if err != nil {
		rss = -1
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Статистика сервера",
		Data: gin.H{
			"world":       stats,
			"uptime":      rs.metrics.GetUptime(),
			"cpu_percent": cpu,
			"rss_mb":      rss,
			"memory":      rs.metrics.GetDetailedMemoryStats(),
			"go_version":  runtime.Version(),
		},
	})
}
