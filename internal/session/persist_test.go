package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestEncodeDropsPassword(t *testing.T) {
	u := user(1, "ADMIN")
	u.Password = "secret"
	data, err := Encode(Session{User: u, Token: adminToken})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "secret") {
		t.Fatalf("record leaks password: %s", data)
	}
	if !strings.Contains(string(data), `"v":1`) {
		t.Fatalf("record missing version tag: %s", data)
	}
	back, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if !back.User.HasID(1) || back.Token != adminToken {
		t.Fatalf("decoded = %+v", back)
	}
}

func TestDecodeUnknownVersion(t *testing.T) {
	_, err := Decode([]byte(`{"v":2,"user":null,"token":null}`))
	if !errors.Is(err, ErrSchemaVersion) {
		t.Fatalf("err = %v, want ErrSchemaVersion", err)
	}
}

func TestFilePersister(t *testing.T) {
	ctx := context.Background()
	p := FilePersister{Path: filepath.Join(t.TempDir(), "pos", "session.json"), TTL: time.Hour}

	if _, err := p.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty Load: err = %v", err)
	}
	if err := p.Save(ctx, []byte("payload")); err != nil {
		t.Fatal(err)
	}
	got, err := p.Load(ctx)
	if err != nil || string(got) != "payload" {
		t.Fatalf("Load = %q, %v", got, err)
	}

	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(p.Path, old, old); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired Load: err = %v", err)
	}
	if err := p.Delete(ctx); err != nil {
		t.Fatalf("Delete of missing file: %v", err)
	}
}

func TestRedisPersister(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx := context.Background()
	p := RedisPersister{Client: rdb, Key: "pos:session", TTL: time.Minute}

	if _, err := p.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty Load: err = %v", err)
	}

	s := NewStore(WithPersister(p))
	s.Rehydrate(ctx)
	if err := s.Set(user(5, "VENDEDOR"), adminToken); err != nil {
		t.Fatal(err)
	}
	if ttl := mr.TTL("pos:session"); ttl != time.Minute {
		t.Fatalf("TTL = %v, want 1m", ttl)
	}

	restored := NewStore(WithPersister(p))
	if !restored.Rehydrate(ctx) || !restored.Snapshot().User.HasID(5) {
		t.Fatal("session not restored from redis")
	}

	mr.FastForward(2 * time.Minute)
	expired := NewStore(WithPersister(p))
	if expired.Rehydrate(ctx) {
		t.Fatal("expired record must not be restored")
	}

	_ = s.Set(user(5, "VENDEDOR"), adminToken)
	s.Clear()
	if mr.Exists("pos:session") {
		t.Fatal("Clear must delete the redis key")
	}
}
