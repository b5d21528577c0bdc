package redis

import (
	"context"
	"errors"
	"math"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/nearby/internal/db"
	"github.com/kailas-cloud/nearby/internal/domain/geo"
	"github.com/kailas-cloud/nearby/internal/domain/search/filter"
)

// --- client.go tests ---

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := newStore(c)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := newStore(c)
	if err := s.Ping(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewStore_RequiresAddrs(t *testing.T) {
	if _, err := NewStore(Config{}); err == nil {
		t.Fatal("expected error for empty addrs")
	}
}

// --- hash.go tests ---

func TestHSetMulti_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisInt64(2)),
			mock.Result(mock.RedisInt64(2)),
		})

	s := newStore(c)
	err := s.HSetMulti(context.Background(), []db.HashSetItem{
		{Key: "k1", Fields: map[string]string{"f1": "v1"}},
		{Key: "k2", Fields: map[string]string{"f2": "v2"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHSetMulti_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{mock.ErrorResult(context.DeadlineExceeded)})

	s := newStore(c)
	err := s.HSetMulti(context.Background(), []db.HashSetItem{{Key: "k1", Fields: map[string]string{"f": "v"}}})
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %v", err)
	}
}

func TestHSetMulti_Empty(t *testing.T) {
	s := newStore(nil)
	if err := s.HSetMulti(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHGetAllMulti_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{
				"name": mock.RedisString("Sunrise Diner"),
			})),
			mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{})),
		})

	s := newStore(c)
	results, err := s.HGetAllMulti(context.Background(), []string{"k1", "k2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0]["name"] != "Sunrise Diner" {
		t.Errorf("unexpected first result: %v", results[0])
	}
	if len(results[1]) != 0 {
		t.Errorf("expected empty map for missing hash, got %v", results[1])
	}
}

func TestHGetAllMulti_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{mock.ErrorResult(context.DeadlineExceeded)})

	s := newStore(c)
	_, err := s.HGetAllMulti(context.Background(), []string{"k1"})
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %v", err)
	}
}

func TestHGetAllMulti_Empty(t *testing.T) {
	s := newStore(nil) // client not called
	results, err := s.HGetAllMulti(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results != nil {
		t.Errorf("expected nil, got %v", results)
	}
}

// --- kv.go tests ---

func TestGet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "mykey")).
		Return(mock.Result(mock.RedisBlobString("value")))

	s := newStore(c)
	data, err := s.Get(context.Background(), "mykey")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "value" {
		t.Errorf("unexpected data: %s", data)
	}
}

func TestGet_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "mykey")).
		Return(mock.Result(mock.RedisNil()))

	s := newStore(c)
	_, err := s.Get(context.Background(), "mykey")
	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestGet_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "mykey")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := newStore(c)
	_, err := s.Get(context.Background(), "mykey")
	if errors.Is(err, db.ErrKeyNotFound) {
		t.Error("should not be ErrKeyNotFound for network errors")
	}
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %v", err)
	}
}

func TestSetWithTTL_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("SET", "mykey", "myvalue", "EX", "60")).
		Return(mock.Result(mock.RedisString("OK")))

	s := newStore(c)
	if err := s.SetWithTTL(context.Background(), "mykey", []byte("myvalue"), time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExpire_RoundsUpToSeconds(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("EXPIRE", "mykey", "2")).
		Return(mock.Result(mock.RedisInt64(1)))

	s := newStore(c)
	if err := s.Expire(context.Background(), "mykey", 1500*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- zset.go tests ---

func TestZAdd_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("ZADD", "rl", "1700000000000", "member-1")).
		Return(mock.Result(mock.RedisInt64(1)))

	s := newStore(c)
	if err := s.ZAdd(context.Background(), "rl", 1700000000000, "member-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestZAdd_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "ZADD" })).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := newStore(c)
	err := s.ZAdd(context.Background(), "rl", 1, "m")
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpZAdd {
		t.Errorf("expected ZADD db.Error, got %v", err)
	}
}

func TestZCount_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("ZCOUNT", "rl", "1000", "61000")).
		Return(mock.Result(mock.RedisInt64(7)))

	s := newStore(c)
	n, err := s.ZCount(context.Background(), "rl", 1000, 61000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 7 {
		t.Errorf("expected 7, got %d", n)
	}
}

func TestZRemRangeByScore_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("ZREMRANGEBYSCORE", "rl", "0", "999.5")).
		Return(mock.Result(mock.RedisInt64(3)))

	s := newStore(c)
	if err := s.ZRemRangeByScore(context.Background(), "rl", 0, 999.5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFormatScore(t *testing.T) {
	tests := map[float64]string{
		math.Inf(1):  "+inf",
		math.Inf(-1): "-inf",
		42:           "42",
		0.25:         "0.25",
	}
	for in, want := range tests {
		if got := formatScore(in); got != want {
			t.Errorf("formatScore(%v) = %q, want %q", in, got, want)
		}
	}
}

// --- index.go tests ---

func catalogIndex() *db.IndexDefinition {
	return &db.IndexDefinition{
		Name:     "test:idx",
		Prefixes: []string{"test:offering:"},
		Fields: []db.IndexField{
			{Name: "category", Type: db.IndexFieldTag},
			{Name: "lat", Type: db.IndexFieldNumeric},
			{Name: "vector", Type: db.IndexFieldVector, VectorDim: 4, VectorAlgo: db.VectorHNSW},
		},
	}
}

func TestCreateIndex_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE" && cmd[1] == "test:idx" &&
				slices.Contains(cmd, "HASH") && slices.Contains(cmd, "HNSW")
		})).
		Return(mock.Result(mock.RedisString("OK")))

	s := newStore(c)
	if err := s.CreateIndex(context.Background(), catalogIndex()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateIndex_AlreadyExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE"
		})).
		Return(mock.Result(mock.RedisError("Index already exists")))

	s := newStore(c)
	err := s.CreateIndex(context.Background(), catalogIndex())
	if !errors.Is(err, db.ErrIndexExists) {
		t.Errorf("expected ErrIndexExists, got %v", err)
	}
}

func TestCreateIndex_InvalidDefinition(t *testing.T) {
	s := newStore(nil) // rejected before any command is sent
	err := s.CreateIndex(context.Background(), &db.IndexDefinition{Name: "x"})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestIndexExists_True(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "test:idx")).
		Return(mock.Result(mock.RedisArray(mock.RedisString("index_name"), mock.RedisString("test:idx"))))

	s := newStore(c)
	exists, err := s.IndexExists(context.Background(), "test:idx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exists {
		t.Error("expected true")
	}
}

func TestIndexExists_False(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "test:idx")).
		Return(mock.Result(mock.RedisError("Unknown Index name")))

	s := newStore(c)
	exists, err := s.IndexExists(context.Background(), "test:idx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists {
		t.Error("expected false")
	}
}

func TestBuildFieldArgs_AllTypes(t *testing.T) {
	tests := []struct {
		name  string
		field db.IndexField
		want  string
	}{
		{"tag", db.IndexField{Name: "f", Type: db.IndexFieldTag}, "TAG"},
		{"tag_with_separator", db.IndexField{Name: "f", Type: db.IndexFieldTag, TagSeparator: ","}, "SEPARATOR"},
		{"numeric", db.IndexField{Name: "f", Type: db.IndexFieldNumeric}, "NUMERIC"},
		{"text", db.IndexField{Name: "f", Type: db.IndexFieldText}, "TEXT"},
		{"vector_default_flat", db.IndexField{Name: "f", Type: db.IndexFieldVector, VectorDim: 128}, "FLAT"},
		{"vector_cosine", db.IndexField{Name: "f", Type: db.IndexFieldVector, VectorDim: 128}, "COSINE"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			args, err := buildFieldArgs(&tc.field)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !slices.Contains(args, tc.want) {
				t.Errorf("expected %q in args %v", tc.want, args)
			}
		})
	}
}

func TestBuildFieldArgs_Errors(t *testing.T) {
	if _, err := buildFieldArgs(&db.IndexField{Name: "", Type: db.IndexFieldTag}); err == nil {
		t.Error("expected error for empty field name")
	}
	if _, err := buildFieldArgs(&db.IndexField{Name: "f", Type: db.IndexFieldType(99)}); err == nil {
		t.Error("expected error for unknown type")
	}
	if _, err := buildFieldArgs(&db.IndexField{Name: "f", Type: db.IndexFieldVector}); err == nil {
		t.Error("expected error for zero vector dim")
	}
}

// --- search.go tests ---

func TestSearchKNN_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			if cmd[0] != "FT.SEARCH" || cmd[1] != "idx" {
				return false
			}
			i := slices.Index(cmd, "LIMIT")
			return i > 0 && cmd[i+2] == "25" && strings.HasPrefix(cmd[2], "((@lat:[") &&
				strings.Contains(cmd[2], "|@located:{false})=>[KNN 25 @vector $BLOB]")
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(1), // total
			mock.RedisString("offering:1"),
			mock.RedisArray(
				mock.RedisString("__vector_score"),
				mock.RedisString("0.1"), // distance 0.1 -> similarity 0.9
				mock.RedisString("title"),
				mock.RedisString("Sunrise Diner"),
			),
		)))

	s := newStore(c)
	result, err := s.SearchKNN(context.Background(), &db.KNNQuery{
		IndexName: "idx",
		Filters:   filter.Within(geo.BoundingBox(geo.Point{Lat: 37.77, Lng: -122.42}, 10)),
		Vector:    []float32{0.1, 0.2},
		K:         25,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 1 || len(result.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %+v", result)
	}
	e := result.Entries[0]
	if e.Key != "offering:1" || e.Fields["title"] != "Sunrise Diner" {
		t.Errorf("unexpected entry %+v", e)
	}
	if _, ok := e.Fields["__vector_score"]; ok {
		t.Error("__vector_score should be consumed into Score")
	}
	if e.Score < 0.89 || e.Score > 0.91 {
		t.Errorf("expected score ~0.9, got %f", e.Score)
	}
}

func TestSearchKNN_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH" && cmd[2] == "*=>[KNN 10 @vector $BLOB]"
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	s := newStore(c)
	result, err := s.SearchKNN(context.Background(), &db.KNNQuery{
		IndexName: "idx",
		Vector:    []float32{0.1},
		K:         10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Entries) != 0 {
		t.Errorf("expected 0 entries, got %d", len(result.Entries))
	}
}

func TestSearchKNN_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := newStore(c)
	_, err := s.SearchKNN(context.Background(), &db.KNNQuery{
		IndexName: "idx",
		Vector:    []float32{0.1},
		K:         10,
	})
	if !isDBError(err) {
		t.Fatalf("expected db.Error, got %v", err)
	}
}

func TestSearchKNN_Validation(t *testing.T) {
	s := &Store{}
	ctx := context.Background()

	if _, err := s.SearchKNN(ctx, &db.KNNQuery{Vector: []float32{0.1}, K: 10}); err == nil {
		t.Error("expected error for empty index name")
	}
	if _, err := s.SearchKNN(ctx, &db.KNNQuery{IndexName: "idx", K: 10}); err == nil {
		t.Error("expected error for empty vector")
	}
	if _, err := s.SearchKNN(ctx, &db.KNNQuery{IndexName: "idx", Vector: []float32{0.1}, K: 0}); err == nil {
		t.Error("expected error for k=0")
	}
}

// --- Filter building tests ---

func TestBuildFilter_Empty(t *testing.T) {
	if result := buildFilter(filter.Expression{}); result != "" {
		t.Errorf("expected empty string, got %q", result)
	}
}

func TestBuildFilter_Tag(t *testing.T) {
	cond, _ := filter.NewMatch("category", "coffee shop")
	expr, _ := filter.NewExpression([]filter.Condition{cond}, nil)

	if result := buildFilter(expr); result != `@category:{coffee\ shop}` {
		t.Errorf("unexpected filter: %q", result)
	}
}

func TestBuildFilter_Between(t *testing.T) {
	cond, _ := filter.NewBetween("lng", -122.5, -122.25)
	expr, _ := filter.NewExpression([]filter.Condition{cond}, nil)

	if result := buildFilter(expr); result != `@lng:[-122.5 -122.25]` {
		t.Errorf("unexpected filter: %q", result)
	}
}

func TestBuildFilter_Combined(t *testing.T) {
	must, _ := filter.NewBetween("lat", 37, 38)
	not, _ := filter.NewMatch("category", "bar")
	expr, _ := filter.NewExpression([]filter.Condition{must}, []filter.Condition{not})

	if result := buildFilter(expr); result != `@lat:[37 38] -@category:{bar}` {
		t.Errorf("unexpected filter: %q", result)
	}
}

func TestBuildFilter_WithinAdmitsUnlocated(t *testing.T) {
	expr := filter.Within(geo.Box{MinLat: 37, MaxLat: 38, MinLng: -123, MaxLng: -122})

	want := `(@lat:[37 38] @lng:[-123 -122])|@located:{false}`
	if result := buildFilter(expr); result != want {
		t.Errorf("unexpected filter: %q, want %q", result, want)
	}
}

func TestVectorToBytes(t *testing.T) {
	b := vectorToBytes([]float32{1.0, 2.0})
	if len(b) != 8 {
		t.Fatalf("expected 8 bytes, got %d", len(b))
	}
}

// --- helpers ---

// isDBError is a test helper for checking wrapped db.Error.
func isDBError(err error) bool {
	var dbErr *db.Error
	return errors.As(err, &dbErr)
}
