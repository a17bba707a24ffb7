package service

import (
	"testing"
	"time"
)

func TestSettings_ClampsBootValues(t *testing.T) {
	s := NewSettings(0, -time.Second)
	p := s.Policy()
	if p.MaxAttempts != 1 {
		t.Errorf("expected max attempts clamped to 1, got %d", p.MaxAttempts)
	}
	if p.Delay != 0 {
		t.Errorf("expected delay clamped to 0, got %s", p.Delay)
	}
}

func TestSettings_Update(t *testing.T) {
	intPtr := func(v int) *int { return &v }
	durPtr := func(v time.Duration) *time.Duration { return &v }

	tests := []struct {
		name        string
		maxAttempts *int
		delay       *time.Duration
		wantErr     bool
		wantMax     int
		wantDelay   time.Duration
	}{
		{
			name:        "update both",
			maxAttempts: intPtr(5),
			delay:       durPtr(500 * time.Millisecond),
			wantMax:     5,
			wantDelay:   500 * time.Millisecond,
		},
		{
			name:        "partial update keeps other value",
			maxAttempts: intPtr(7),
			wantMax:     7,
			wantDelay:   2 * time.Second,
		},
		{
			name:      "no fields is a no-op",
			wantMax:   3,
			wantDelay: 2 * time.Second,
		},
		{
			name:        "rejects zero attempts",
			maxAttempts: intPtr(0),
			wantErr:     true,
		},
		{
			name:    "rejects negative delay",
			delay:   durPtr(-time.Second),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSettings(3, 2*time.Second)

			p, err := s.Update(tt.maxAttempts, tt.delay)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				// Nothing may have been applied.
				cur := s.Policy()
				if cur.MaxAttempts != 3 || cur.Delay != 2*time.Second {
					t.Errorf("rejected update must not change settings, got %+v", cur)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.MaxAttempts != tt.wantMax || p.Delay != tt.wantDelay {
				t.Errorf("expected policy {%d %s}, got %+v", tt.wantMax, tt.wantDelay, p)
			}
		})
	}
}

func TestSettings_SnapshotIsImmutable(t *testing.T) {
	s := NewSettings(3, 2*time.Second)
	snapshot := s.Policy()

	five := 5
	if _, err := s.Update(&five, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snapshot.MaxAttempts != 3 {
		t.Errorf("snapshot changed after update, got %d", snapshot.MaxAttempts)
	}
	if s.Policy().MaxAttempts != 5 {
		t.Errorf("expected new policy to reflect update, got %d", s.Policy().MaxAttempts)
	}
}
