package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"PogoMap-App/internal/domain/cellgrid"
	"PogoMap-App/internal/domain/helper"
	"PogoMap-App/internal/domain/model"
	"PogoMap-App/internal/domain/service"
	"PogoMap-App/internal/usecase"
	apimodel "PogoMap-App/model"
)

// MapObjectsHandler はマップ関連APIのハンドラー
type MapObjectsHandler struct {
	world       *service.WorldView
	scanUseCase usecase.MapScanUseCase
}

// NewMapObjectsHandler は新しいMapObjectsHandlerインスタンスを作成
func NewMapObjectsHandler(world *service.WorldView, scanUseCase usecase.MapScanUseCase) *MapObjectsHandler {
	return &MapObjectsHandler{
		world:       world,
		scanUseCase: scanUseCase,
	}
}

// RegisterRoutes はルーティングを登録する
func (h *MapObjectsHandler) RegisterRoutes(router gin.IRouter) {
	mapGroup := router.Group("/map")
	{
		mapGroup.GET("/objects", h.GetMapObjects)
		mapGroup.POST("/objects/at", h.PostMapObjectsAt)
		mapGroup.GET("/cells", h.GetCells)
		mapGroup.GET("/catchable", h.GetCatchablePokemon)
		mapGroup.GET("/nearby", h.GetNearbyPokemon)
		mapGroup.GET("/spawn-points", h.GetSpawnPoints)
		mapGroup.GET("/decimated-spawn-points", h.GetDecimatedSpawnPoints)
		mapGroup.GET("/forts/nearest", h.GetNearestFort)
		mapGroup.GET("/cache", h.GetCacheSettings)
		mapGroup.PUT("/cache", h.PutCacheSettings)
		mapGroup.DELETE("/cache", h.DeleteCache)
		mapGroup.POST("/scan", h.PostScan)
	}

	router.GET("/forts/:id", h.GetFortDetails)

	archive := router.Group("/archive")
	{
		archive.GET("/spawn-points", h.GetArchivedSpawnPoints)
		archive.GET("/sightings/:pokemon_id", h.GetSightings)
	}
}

// GetMapObjects GET /map/objects - 現在位置のまわりのマップオブジェクト
func (h *MapObjectsHandler) GetMapObjects(c *gin.Context) {
	width, ok := queryInt(c, "width", service.DefaultWidth)
	if !ok {
		return
	}

	objects, err := h.world.GetWorldObjectsWithWidth(c.Request.Context(), width)
	if err != nil {
		respondError(c, err, "マップオブジェクトの取得に失敗しました")
		return
	}
	c.JSON(http.StatusOK, h.objectsResponse(objects))
}

// PostMapObjectsAt POST /map/objects/at - 指定位置に移動して取得
func (h *MapObjectsHandler) PostMapObjectsAt(c *gin.Context) {
	var req apimodel.MapObjectsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid_request", "Invalid JSON format: "+err.Error())
		return
	}

	query := service.WorldObjectsQuery{
		Position: req.ToCoordinate(),
		Width:    req.Width,
	}
	for _, raw := range req.CellIDs {
		id, err := apimodel.ParseCellID(raw)
		if err != nil {
			badRequest(c, "invalid_parameter", "Invalid cell_ids value: "+raw)
			return
		}
		query.CellIDs = append(query.CellIDs, id)
	}

	objects, err := h.world.GetWorldObjectsAt(c.Request.Context(), query)
	if err != nil {
		respondError(c, err, "マップオブジェクトの取得に失敗しました")
		return
	}
	c.JSON(http.StatusOK, h.objectsResponse(objects))
}

// GetCells GET /map/cells - 指定位置のまわりのセルID（通信なし）
func (h *MapObjectsHandler) GetCells(c *gin.Context) {
	location, ok := queryLocation(c)
	if !ok {
		return
	}
	width, ok := queryInt(c, "width", service.DefaultWidth)
	if !ok {
		return
	}

	cellIDs := cellgrid.ComputeCellIDs(location.Latitude, location.Longitude, width)
	c.JSON(http.StatusOK, apimodel.NewCellsResponse(location, width, cellIDs))
}

// GetCatchablePokemon GET /map/catchable - 現在位置から近い順の捕獲可能なポケモン
// pokemon_id=25,133 で種類を絞り込み、active=true で消滅済みを除外する
func (h *MapObjectsHandler) GetCatchablePokemon(c *gin.Context) {
	pokemonIDs, err := parseIDList(c.Query("pokemon_id"))
	if err != nil {
		badRequest(c, "invalid_parameter", "Invalid pokemon_id value")
		return
	}

	pokemons, err := h.world.GetCatchablePokemon(c.Request.Context())
	if err != nil {
		respondError(c, err, "捕獲可能なポケモンの取得に失敗しました")
		return
	}

	pokemons = helper.FilterByPokemonID(pokemons, pokemonIDs)
	if c.Query("active") == "true" {
		pokemons = helper.ExcludeExpired(pokemons, time.Now().UnixMilli())
	}

	position := h.world.Position()
	sorted := helper.SortByDistance(pokemons, position)
	items := make([]apimodel.CatchablePokemonItem, 0, len(sorted))
	for _, p := range sorted {
		items = append(items, apimodel.CatchablePokemonItem{
			CatchablePokemon: p.CatchablePokemon,
			EncounterID:      p.EncounterID,
			DistanceMeters:   p.DistanceMeters,
		})
	}

	c.JSON(http.StatusOK, apimodel.CatchablePokemonResponse{
		Position: apimodel.NewLocation(position),
		Pokemons: items,
	})
}

// GetNearbyPokemon GET /map/nearby
func (h *MapObjectsHandler) GetNearbyPokemon(c *gin.Context) {
	pokemons, err := h.world.GetNearbyPokemon(c.Request.Context())
	if err != nil {
		respondError(c, err, "近くのポケモンの取得に失敗しました")
		return
	}
	c.JSON(http.StatusOK, gin.H{"pokemons": emptyIfNil(apimodel.NewNearbyPokemonViews(pokemons))})
}

// GetSpawnPoints GET /map/spawn-points
func (h *MapObjectsHandler) GetSpawnPoints(c *gin.Context) {
	points, err := h.world.GetSpawnPoints(c.Request.Context())
	if err != nil {
		respondError(c, err, "出現ポイントの取得に失敗しました")
		return
	}
	c.JSON(http.StatusOK, gin.H{"points": points})
}

// GetDecimatedSpawnPoints GET /map/decimated-spawn-points
func (h *MapObjectsHandler) GetDecimatedSpawnPoints(c *gin.Context) {
	points, err := h.world.GetDecimatedSpawnPoints(c.Request.Context())
	if err != nil {
		respondError(c, err, "出現ポイントの取得に失敗しました")
		return
	}
	c.JSON(http.StatusOK, gin.H{"points": points})
}

// GetNearestFort GET /map/forts/nearest?type=gym|pokestop
func (h *MapObjectsHandler) GetNearestFort(c *gin.Context) {
	fortType := c.DefaultQuery("type", "pokestop")
	if fortType != "gym" && fortType != "pokestop" {
		badRequest(c, "invalid_parameter", "type must be 'gym' or 'pokestop'")
		return
	}

	objects, err := h.world.GetWorldObjects(c.Request.Context())
	if err != nil {
		respondError(c, err, "フォートの取得に失敗しました")
		return
	}

	forts := objects.Pokestops
	if fortType == "gym" {
		forts = objects.Gyms
	}

	fort, distance := helper.FindNearestFort(forts, h.world.Position())
	if fort == nil {
		c.JSON(http.StatusNotFound, apimodel.ErrorResponse{
			Error:   "not_found",
			Message: "周辺にフォートが見つかりません",
		})
		return
	}
	c.JSON(http.StatusOK, apimodel.NearestFortResponse{Fort: fort, DistanceMeters: distance})
}

// GetCacheSettings GET /map/cache
func (h *MapObjectsHandler) GetCacheSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.cacheSettings())
}

// PutCacheSettings PUT /map/cache - キャッシュの有効・無効と有効期限を変更
func (h *MapObjectsHandler) PutCacheSettings(c *gin.Context) {
	var req apimodel.CacheSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid_request", "Invalid JSON format: "+err.Error())
		return
	}

	if req.Enabled != nil {
		h.world.SetCacheEnabled(*req.Enabled)
	}
	if req.ExpiryMs != nil {
		h.world.SetExpiry(time.Duration(*req.ExpiryMs) * time.Millisecond)
	}
	c.JSON(http.StatusOK, h.cacheSettings())
}

// DeleteCache DELETE /map/cache - キャッシュを空にする
func (h *MapObjectsHandler) DeleteCache(c *gin.Context) {
	h.world.ClearCache()
	c.Status(http.StatusNoContent)
}

// GetFortDetails GET /forts/:id?lat=&lng=
func (h *MapObjectsHandler) GetFortDetails(c *gin.Context) {
	fortID := c.Param("id")
	location, ok := queryLocation(c)
	if !ok {
		return
	}

	details, err := h.scanUseCase.GetFortDetails(c.Request.Context(), fortID, location.Latitude, location.Longitude)
	if err != nil {
		respondError(c, err, "フォート詳細の取得に失敗しました")
		return
	}
	c.JSON(http.StatusOK, details)
}

// PostScan POST /map/scan - 取得したオブジェクトをアーカイブに保存
func (h *MapObjectsHandler) PostScan(c *gin.Context) {
	var req apimodel.ScanRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid_request", "Invalid JSON format: "+err.Error())
			return
		}
	}

	scanReq := usecase.ScanRequest{Width: req.Width}
	if req.Location != nil {
		position := req.Location.ToCoordinate()
		scanReq.Position = &position
	}

	result, err := h.scanUseCase.Scan(c.Request.Context(), scanReq)
	if err != nil {
		respondError(c, err, "スキャンに失敗しました")
		return
	}

	status := "success"
	if len(result.Warnings) > 0 {
		status = "partial"
	}
	c.JSON(http.StatusOK, apimodel.ScanResponse{
		Status:           status,
		ObjectCount:      result.Objects.Count(),
		SpawnPointsSaved: result.SpawnPointsSaved,
		SightingsSaved:   result.SightingsSaved,
		Warnings:         result.Warnings,
	})
}

// GetArchivedSpawnPoints GET /archive/spawn-points?lat=&lng=&radius=&limit=
func (h *MapObjectsHandler) GetArchivedSpawnPoints(c *gin.Context) {
	location, ok := queryLocation(c)
	if !ok {
		return
	}
	radius, err := strconv.ParseFloat(c.DefaultQuery("radius", "500"), 64)
	if err != nil || radius <= 0 {
		badRequest(c, "invalid_parameter", "Invalid radius value")
		return
	}
	limit, ok := queryInt(c, "limit", 100)
	if !ok {
		return
	}

	records, err := h.scanUseCase.FindSpawnPoints(c.Request.Context(), location.ToCoordinate(), radius, limit)
	if err != nil {
		respondError(c, err, "出現ポイントの検索に失敗しました")
		return
	}
	c.JSON(http.StatusOK, gin.H{"spawn_points": emptyIfNil(apimodel.NewSpawnPointRecordViews(records))})
}

// GetSightings GET /archive/sightings/:pokemon_id?limit=
func (h *MapObjectsHandler) GetSightings(c *gin.Context) {
	pokemonID, err := strconv.Atoi(c.Param("pokemon_id"))
	if err != nil {
		badRequest(c, "invalid_parameter", "Invalid pokemon_id value")
		return
	}
	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return
	}

	sightings, err := h.scanUseCase.GetSightings(c.Request.Context(), pokemonID, limit)
	if err != nil {
		respondError(c, err, "目撃記録の取得に失敗しました")
		return
	}
	c.JSON(http.StatusOK, gin.H{"sightings": emptyIfNil(apimodel.NewSightingViews(sightings))})
}

func (h *MapObjectsHandler) objectsResponse(objects *model.MapObjects) apimodel.MapObjectsResponse {
	return apimodel.MapObjectsResponse{
		Position:     apimodel.NewLocation(h.world.Position()),
		CacheEnabled: h.world.CacheEnabled(),
		Objects:      apimodel.NewMapObjectsView(objects),
	}
}

func (h *MapObjectsHandler) cacheSettings() apimodel.CacheSettingsResponse {
	return apimodel.CacheSettingsResponse{
		Enabled:  h.world.CacheEnabled(),
		ExpiryMs: h.world.Expiry().Milliseconds(),
	}
}

// respondError ドメインのエラーをHTTPステータスに変換する
func respondError(c *gin.Context, err error, message string) {
	status := http.StatusInternalServerError
	code := "internal_error"
	switch {
	case errors.Is(err, model.ErrLoginFailed):
		status, code = http.StatusUnauthorized, "login_failed"
	case errors.Is(err, model.ErrRemoteServer), errors.Is(err, model.ErrTransport):
		status, code = http.StatusBadGateway, "upstream_error"
	case errors.Is(err, usecase.ErrArchiveDisabled):
		status, code = http.StatusServiceUnavailable, "archive_disabled"
	}

	c.JSON(status, apimodel.ErrorResponse{
		Error:   code,
		Message: message + ": " + err.Error(),
	})
}

func badRequest(c *gin.Context, code, message string) {
	c.JSON(http.StatusBadRequest, apimodel.ErrorResponse{Error: code, Message: message})
}

func queryInt(c *gin.Context, key string, defaultValue int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return defaultValue, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		badRequest(c, "invalid_parameter", "Invalid "+key+" value")
		return 0, false
	}
	return value, true
}

func queryLocation(c *gin.Context) (apimodel.Location, bool) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr != nil || lngErr != nil {
		badRequest(c, "missing_parameter", "lat and lng parameters are required")
		return apimodel.Location{}, false
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		badRequest(c, "invalid_parameter", "lat must be -90..90 and lng must be -180..180")
		return apimodel.Location{}, false
	}
	return apimodel.Location{Latitude: lat, Longitude: lng}, true
}

func parseIDList(raw string) ([]int, error) {
	if raw == "" {
		return nil, nil
	}
	var ids []int
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
