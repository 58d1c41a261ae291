package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PogoMap-App/internal/domain/cellgrid"
	"PogoMap-App/internal/domain/model"
	"PogoMap-App/internal/infrastructure/codec"
)

type reply struct {
	data []byte
	err  error
}

type sentRequest struct {
	requestType model.RequestType
	payload     []byte
}

// fakeSession 送信内容を記録し、キューに積んだ応答を順に返す
type fakeSession struct {
	position model.Coordinate
	replies  []reply
	requests []sentRequest
}

func (s *fakeSession) Position() model.Coordinate { return s.position }

func (s *fakeSession) SetPosition(position model.Coordinate) { s.position = position }

func (s *fakeSession) SendRequest(ctx context.Context, requestType model.RequestType, payload []byte) ([]byte, error) {
	s.requests = append(s.requests, sentRequest{requestType: requestType, payload: payload})
	if len(s.replies) == 0 {
		return []byte(`{}`), nil
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r.data, r.err
}

func (s *fakeSession) push(t *testing.T, cells ...model.MapCell) {
	t.Helper()
	data, err := json.Marshal(model.GetMapObjectsResponse{Status: 1, MapCells: cells})
	require.NoError(t, err)
	s.replies = append(s.replies, reply{data: data})
}

func (s *fakeSession) pushRaw(data string) {
	s.replies = append(s.replies, reply{data: []byte(data)})
}

func (s *fakeSession) pushErr(err error) {
	s.replies = append(s.replies, reply{err: err})
}

func (s *fakeSession) lastMapRequest(t *testing.T) model.GetMapObjectsMessage {
	t.Helper()
	require.NotEmpty(t, s.requests)
	last := s.requests[len(s.requests)-1]
	require.Equal(t, model.RequestTypeGetMapObjects, last.requestType)

	var msg model.GetMapObjectsMessage
	require.NoError(t, json.Unmarshal(last.payload, &msg))
	return msg
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Set(ms int64) { c.now = time.UnixMilli(ms) }

func newTestWorldView() (*WorldView, *fakeSession, *fakeClock) {
	session := &fakeSession{position: model.NewCoordinate(10, 100)}
	clock := &fakeClock{now: time.UnixMilli(1_700_000_000_000)}
	return NewWorldView(session, codec.NewJSONCodec(), clock), session, clock
}

func catchableCell(id model.CellID, n int) model.MapCell {
	cell := model.MapCell{S2CellID: id}
	for i := 0; i < n; i++ {
		cell.CatchablePokemons = append(cell.CatchablePokemons, model.MapPokemon{
			EncounterID:  uint64(id)*100 + uint64(i),
			PokemonID:    16,
			SpawnPointID: fmt.Sprintf("sp-%d-%d", id, i),
		})
	}
	return cell
}

func TestWorldView_振り分け(t *testing.T) {
	w, session, _ := newTestWorldView()
	w.SetCacheEnabled(false)

	session.push(t,
		model.MapCell{
			S2CellID:             1,
			NearbyPokemons:       []model.NearbyPokemon{{PokemonID: 1}},
			CatchablePokemons:    []model.MapPokemon{{EncounterID: 11}},
			WildPokemons:         []model.WildPokemon{{EncounterID: 12}},
			SpawnPoints:          []model.SpawnPoint{{Latitude: 1}},
			DecimatedSpawnPoints: []model.SpawnPoint{{Latitude: 2}},
			Forts: []model.FortData{
				{ID: "gym-1", Type: model.FortTypeGym},
				{ID: "stop-1", Type: model.FortTypeCheckpoint},
				{ID: "unknown-1", Type: model.FortType(7)},
			},
		},
		model.MapCell{
			S2CellID: 2,
			Forts: []model.FortData{
				{ID: "stop-2", Type: model.FortTypeCheckpoint},
				{ID: "unknown-2", Type: model.FortType(-1)},
			},
			NearbyPokemons: []model.NearbyPokemon{{PokemonID: 2}},
		},
	)

	objects, err := w.GetWorldObjectsForCells(context.Background(), []model.CellID{1, 2})
	require.NoError(t, err)

	t.Run("セル順・サーバー順で追記される", func(t *testing.T) {
		require.Len(t, objects.NearbyPokemons, 2)
		assert.Equal(t, 1, objects.NearbyPokemons[0].PokemonID)
		assert.Equal(t, 2, objects.NearbyPokemons[1].PokemonID)
		assert.Len(t, objects.CatchablePokemons, 1)
		assert.Len(t, objects.WildPokemons, 1)
		assert.Len(t, objects.SpawnPoints, 1)
		assert.Len(t, objects.DecimatedSpawnPoints, 1)
	})

	t.Run("未知の種別のフォートは破棄される", func(t *testing.T) {
		require.Len(t, objects.Gyms, 1)
		assert.Equal(t, "gym-1", objects.Gyms[0].ID)
		require.Len(t, objects.Pokestops, 2)
		assert.Equal(t, "stop-1", objects.Pokestops[0].ID)
		assert.Equal(t, "stop-2", objects.Pokestops[1].ID)
	})
}

func TestWorldView_リクエスト内容(t *testing.T) {
	w, session, _ := newTestWorldView()

	_, err := w.GetWorldObjects(context.Background())
	require.NoError(t, err)

	msg := session.lastMapRequest(t)
	assert.Equal(t, 10.0, msg.Latitude)
	assert.Equal(t, 100.0, msg.Longitude)
	assert.Equal(t, cellgrid.ComputeCellIDs(10, 100, DefaultWidth), msg.CellIDs)
	require.Len(t, msg.SinceTimestampMs, 81)
	for _, since := range msg.SinceTimestampMs {
		assert.Equal(t, int64(0), since)
	}

	_, err = w.GetWorldObjectsWithWidth(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, session.lastMapRequest(t).CellIDs, 9)
}

func TestWorldView_キャッシュ無効(t *testing.T) {
	w, session, clock := newTestWorldView()
	w.SetCacheEnabled(false)
	w.SetExpiry(time.Hour)

	session.push(t, catchableCell(1, 2))
	first, err := w.GetWorldObjectsForCells(context.Background(), []model.CellID{1})
	require.NoError(t, err)

	clock.Set(clock.now.UnixMilli() + 1000)
	session.push(t, catchableCell(1, 1))
	second, err := w.GetWorldObjectsForCells(context.Background(), []model.CellID{1})
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Len(t, first.CatchablePokemons, 2)
	assert.Len(t, second.CatchablePokemons, 1, "前回の結果とマージされない")
	assert.Equal(t, []int64{0}, session.lastMapRequest(t).SinceTimestampMs)

	// キャッシュの状態は変更されない
	assert.Equal(t, int64(0), w.cache.Since())
	assert.True(t, w.cache.Value().IsEmpty())
}

func TestWorldView_キャッシュ有効(t *testing.T) {
	const expiryMs = 60_000
	const start = int64(1_700_000_000_000)

	t.Run("有効期限内はマージされる", func(t *testing.T) {
		w, session, clock := newTestWorldView()
		w.SetExpiry(expiryMs * time.Millisecond)
		clock.Set(start)

		session.push(t, catchableCell(1, 2))
		first, err := w.GetWorldObjectsForCells(context.Background(), []model.CellID{1})
		require.NoError(t, err)
		assert.Len(t, first.CatchablePokemons, 2)
		assert.Equal(t, []int64{0}, session.lastMapRequest(t).SinceTimestampMs)

		clock.Set(start + expiryMs - 1)
		session.push(t, catchableCell(1, 3))
		second, err := w.GetWorldObjectsForCells(context.Background(), []model.CellID{1})
		require.NoError(t, err)

		assert.Equal(t, []int64{start}, session.lastMapRequest(t).SinceTimestampMs)
		assert.Len(t, second.CatchablePokemons, 5, "重複排除せずに追記される")
		assert.Len(t, first.CatchablePokemons, 2, "返却済みのスナップショットは変化しない")
		assert.Equal(t, start+expiryMs-1, w.cache.Since())
	})

	t.Run("有効期限切れは空から再構築される", func(t *testing.T) {
		w, session, clock := newTestWorldView()
		w.SetExpiry(expiryMs * time.Millisecond)
		clock.Set(start)

		session.push(t, catchableCell(1, 2))
		_, err := w.GetWorldObjectsForCells(context.Background(), []model.CellID{1})
		require.NoError(t, err)

		clock.Set(start + expiryMs + 1)
		session.push(t, catchableCell(1, 3))
		second, err := w.GetWorldObjectsForCells(context.Background(), []model.CellID{1})
		require.NoError(t, err)

		assert.Equal(t, []int64{0}, session.lastMapRequest(t).SinceTimestampMs)
		assert.Len(t, second.CatchablePokemons, 3)
		assert.Equal(t, start+expiryMs+1, w.cache.Since())
	})

	t.Run("有効期限0は毎回期限切れ", func(t *testing.T) {
		w, session, clock := newTestWorldView()
		clock.Set(start)

		session.push(t, catchableCell(1, 2))
		_, err := w.GetWorldObjectsForCells(context.Background(), []model.CellID{1})
		require.NoError(t, err)

		clock.Set(start + 1)
		session.push(t, catchableCell(1, 1))
		second, err := w.GetWorldObjectsForCells(context.Background(), []model.CellID{1})
		require.NoError(t, err)
		assert.Len(t, second.CatchablePokemons, 1)
	})
}

func TestWorldView_ClearCache(t *testing.T) {
	fresh, freshSession, _ := newTestWorldView()
	fresh.SetExpiry(time.Hour)
	freshSession.push(t, catchableCell(1, 1))
	want, err := fresh.GetWorldObjectsForCells(context.Background(), []model.CellID{1})
	require.NoError(t, err)
	wantRequest := freshSession.lastMapRequest(t)

	w, session, _ := newTestWorldView()
	w.SetExpiry(time.Hour)
	session.push(t, catchableCell(1, 4))
	_, err = w.GetWorldObjectsForCells(context.Background(), []model.CellID{1})
	require.NoError(t, err)

	w.ClearCache()
	assert.Equal(t, int64(0), w.cache.Since())

	session.push(t, catchableCell(1, 1))
	got, err := w.GetWorldObjectsForCells(context.Background(), []model.CellID{1})
	require.NoError(t, err)

	assert.Equal(t, wantRequest, session.lastMapRequest(t))
	assert.Equal(t, want, got)
}

func TestWorldView_デコード失敗(t *testing.T) {
	w, session, clock := newTestWorldView()
	w.SetExpiry(time.Hour)

	session.push(t, catchableCell(1, 3))
	_, err := w.GetWorldObjectsForCells(context.Background(), []model.CellID{1, 2})
	require.NoError(t, err)
	before := w.cache.Value().Clone()
	beforeSince := w.cache.Since()

	clock.Set(clock.now.UnixMilli() + 10)
	// 2セル目だけが不正
	session.pushRaw(`{"map_cells":[{"s2_cell_id":1,"catchable_pokemons":[{"encounter_id":1}]},{"s2_cell_id":2,"forts":"broken"}]}`)
	objects, err := w.GetWorldObjectsForCells(context.Background(), []model.CellID{1, 2})

	require.Error(t, err)
	assert.Nil(t, objects)
	assert.True(t, errors.Is(err, model.ErrRemoteServer))
	var remoteErr *model.RemoteServerError
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, "GET_MAP_OBJECTS", remoteErr.Op)

	assert.Equal(t, before, w.cache.Value())
	assert.Len(t, w.cache.Value().CatchablePokemons, 3)
	assert.Equal(t, beforeSince, w.cache.Since())
}

func TestWorldView_セッションエラー(t *testing.T) {
	cases := map[string]error{
		"認証エラー": fmt.Errorf("トークン期限切れ: %w", model.ErrLoginFailed),
		"通信エラー": fmt.Errorf("接続拒否: %w", model.ErrTransport),
	}

	for name, sessionErr := range cases {
		t.Run(name, func(t *testing.T) {
			w, session, _ := newTestWorldView()
			w.SetExpiry(time.Hour)
			session.push(t, catchableCell(1, 2))
			_, err := w.GetWorldObjectsForCells(context.Background(), []model.CellID{1})
			require.NoError(t, err)
			since := w.cache.Since()

			session.pushErr(sessionErr)
			_, err = w.GetWorldObjectsForCells(context.Background(), []model.CellID{1})
			assert.Same(t, sessionErr, err, "そのまま返される")
			assert.Len(t, w.cache.Value().CatchablePokemons, 2)
			assert.Equal(t, since, w.cache.Since())
		})
	}
}

func TestWorldView_期限切れ後の失敗はキャッシュを変更しない(t *testing.T) {
	w, session, clock := newTestWorldView()
	w.SetExpiry(time.Second)

	session.push(t, catchableCell(1, 2))
	_, err := w.GetWorldObjectsForCells(context.Background(), []model.CellID{1})
	require.NoError(t, err)
	since := w.cache.Since()

	clock.Set(since + 5000)
	session.pushRaw(`garbage`)
	_, err = w.GetWorldObjectsForCells(context.Background(), []model.CellID{1})
	require.Error(t, err)

	assert.Len(t, w.cache.Value().CatchablePokemons, 2)
	assert.Equal(t, since, w.cache.Since())
}

func TestWorldView_GetWorldObjectsAt(t *testing.T) {
	w, session, _ := newTestWorldView()
	target := model.Coordinate{Latitude: 20, Longitude: 110, Altitude: 12}

	t.Run("幅から計算したセルで取得し現在位置を更新する", func(t *testing.T) {
		_, err := w.GetWorldObjectsAt(context.Background(), WorldObjectsQuery{Position: target, Width: 3})
		require.NoError(t, err)

		msg := session.lastMapRequest(t)
		assert.Equal(t, cellgrid.ComputeCellIDs(20, 110, 3), msg.CellIDs)
		assert.Equal(t, 20.0, msg.Latitude)
		assert.Equal(t, 110.0, msg.Longitude)
		assert.Equal(t, target, w.Position())
	})

	t.Run("幅0は既定幅", func(t *testing.T) {
		_, err := w.GetWorldObjectsAt(context.Background(), WorldObjectsQuery{Position: target})
		require.NoError(t, err)
		assert.Len(t, session.lastMapRequest(t).CellIDs, 81)
	})

	t.Run("セルID指定が優先される", func(t *testing.T) {
		_, err := w.GetWorldObjectsAt(context.Background(), WorldObjectsQuery{
			Position: model.NewCoordinate(1, 2),
			Width:    9,
			CellIDs:  []model.CellID{5, 6},
		})
		require.NoError(t, err)
		msg := session.lastMapRequest(t)
		assert.Equal(t, []model.CellID{5, 6}, msg.CellIDs)
		assert.Equal(t, model.NewCoordinate(1, 2), w.Position())
	})
}

func TestWorldView_派生ヘルパー(t *testing.T) {
	w, session, _ := newTestWorldView()
	w.SetCacheEnabled(false)

	cell := model.MapCell{
		S2CellID:          1,
		CatchablePokemons: []model.MapPokemon{{EncounterID: 1, PokemonID: 10, ExpirationTimestampMs: 500}},
		WildPokemons: []model.WildPokemon{{
			EncounterID:             2,
			PokemonData:             model.PokemonData{PokemonID: 20},
			LastModifiedTimestampMs: 1000,
			TimeTillHiddenMs:        200,
		}},
		NearbyPokemons:       []model.NearbyPokemon{{PokemonID: 30}},
		SpawnPoints:          []model.SpawnPoint{{Latitude: 1, Longitude: 2}},
		DecimatedSpawnPoints: []model.SpawnPoint{{Latitude: 3, Longitude: 4}, {Latitude: 5, Longitude: 6}},
	}

	t.Run("捕獲可能はマップ上→野生の順", func(t *testing.T) {
		session.push(t, cell)
		pokemons, err := w.GetCatchablePokemon(context.Background())
		require.NoError(t, err)
		require.Len(t, pokemons, 2)
		assert.Equal(t, 10, pokemons[0].PokemonID)
		assert.False(t, pokemons[0].Wild)
		assert.Equal(t, 20, pokemons[1].PokemonID)
		assert.True(t, pokemons[1].Wild)
		assert.Equal(t, int64(1200), pokemons[1].ExpirationTimestampMs)
	})

	t.Run("近くのポケモン", func(t *testing.T) {
		session.push(t, cell)
		nearby, err := w.GetNearbyPokemon(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []model.NearbyPokemon{{PokemonID: 30}}, nearby)
	})

	t.Run("出現ポイント", func(t *testing.T) {
		session.push(t, cell)
		points, err := w.GetSpawnPoints(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []model.Point{{Latitude: 1, Longitude: 2}}, points)

		session.push(t, cell)
		decimated, err := w.GetDecimatedSpawnPoints(context.Background())
		require.NoError(t, err)
		assert.Len(t, decimated, 2)
	})

	t.Run("取得失敗はそのまま返す", func(t *testing.T) {
		session.pushErr(model.ErrTransport)
		_, err := w.GetCatchablePokemon(context.Background())
		assert.ErrorIs(t, err, model.ErrTransport)
	})
}

func TestWorldView_単発リクエスト(t *testing.T) {
	w, session, _ := newTestWorldView()
	w.SetExpiry(time.Hour)
	session.push(t, catchableCell(1, 2))
	_, err := w.GetWorldObjectsForCells(context.Background(), []model.CellID{1})
	require.NoError(t, err)
	since := w.cache.Since()

	t.Run("フォート詳細", func(t *testing.T) {
		session.pushRaw(`{"fort_id":"f1","name":"八坂神社","type":1,"latitude":35.0036,"longitude":135.7785}`)
		details, err := w.GetFortDetails(context.Background(), "f1", 35.0036, 135.7785)
		require.NoError(t, err)
		assert.Equal(t, "八坂神社", details.Name)
		assert.Equal(t, model.FortTypeCheckpoint, details.Type)

		last := session.requests[len(session.requests)-1]
		assert.Equal(t, model.RequestTypeFortDetails, last.requestType)
		assert.JSONEq(t, `{"fort_id":"f1","latitude":35.0036,"longitude":135.7785}`, string(last.payload))
	})

	t.Run("フォート検索はプレイヤー位置を送る", func(t *testing.T) {
		session.pushRaw(`{"result":1,"experience_awarded":50}`)
		resp, err := w.SearchFort(context.Background(), model.FortData{ID: "f1", Latitude: 1, Longitude: 2})
		require.NoError(t, err)
		assert.Equal(t, 50, resp.ExperienceAwarded)

		var msg model.FortSearchMessage
		require.NoError(t, json.Unmarshal(session.requests[len(session.requests)-1].payload, &msg))
		assert.Equal(t, 10.0, msg.PlayerLatitude)
		assert.Equal(t, 100.0, msg.PlayerLongitude)
		assert.Equal(t, 1.0, msg.FortLatitude)
	})

	t.Run("エンカウントと捕獲", func(t *testing.T) {
		pokemon := model.CatchablePokemon{EncounterID: 99, SpawnPointID: "sp"}

		session.pushRaw(`{"status":1}`)
		enc, err := w.EncounterPokemon(context.Background(), pokemon)
		require.NoError(t, err)
		assert.Equal(t, 1, enc.Status)
		assert.Equal(t, model.RequestTypeEncounter, session.requests[len(session.requests)-1].requestType)

		session.pushRaw(`{"status":1,"captured_pokemon_id":1234}`)
		caught, err := w.CatchPokemon(context.Background(), pokemon, model.CatchParams{Pokeball: 1, NormalizedHitPosition: 1, NormalizedReticleSize: 1.95, SpinModifier: 1})
		require.NoError(t, err)
		assert.Equal(t, uint64(1234), caught.CapturedPokemonID)

		var msg model.CatchPokemonMessage
		require.NoError(t, json.Unmarshal(session.requests[len(session.requests)-1].payload, &msg))
		assert.True(t, msg.HitPokemon)
		assert.Equal(t, "sp", msg.SpawnPointGUID)
	})

	t.Run("デコード失敗はリモートサーバーエラー", func(t *testing.T) {
		session.pushRaw(`[1,2,3]`)
		_, err := w.GetFortDetails(context.Background(), "f1", 0, 0)
		assert.ErrorIs(t, err, model.ErrRemoteServer)
	})

	t.Run("キャッシュには影響しない", func(t *testing.T) {
		assert.Len(t, w.cache.Value().CatchablePokemons, 2)
		assert.Equal(t, since, w.cache.Since())
	})
}
