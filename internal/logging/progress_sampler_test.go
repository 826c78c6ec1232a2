package logging

import "testing"

func TestNewProgressSampler(t *testing.T) {
	tests := []struct {
		name       string
		bucketSize float64
		wantSize   float64
	}{
		{"default bucket size for zero", 0, 10},
		{"default bucket size for negative", -1, 10},
		{"custom bucket size", 25, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewProgressSampler(tt.bucketSize)
			if s.bucketSize != tt.wantSize {
				t.Errorf("bucketSize = %v, want %v", s.bucketSize, tt.wantSize)
			}
			if s.lastBucket != -1 {
				t.Errorf("lastBucket = %d, want -1", s.lastBucket)
			}
		})
	}
}

func TestProgressSampler_NilSampler(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog("merge", 1, 2) {
		t.Error("ShouldLog on nil sampler should always return true")
	}
	s.Reset()
}

func TestProgressSampler_PhaseChange(t *testing.T) {
	s := NewProgressSampler(10)

	if !s.ShouldLog("alts", 0, 100) {
		t.Error("first phase should log")
	}
	if s.ShouldLog("alts", 1, 100) {
		t.Error("same phase and bucket should not log again")
	}
	if !s.ShouldLog(" xrefs ", 1, 100) {
		t.Error("different phase should log")
	}
	if s.lastPhase != "xrefs" {
		t.Errorf("lastPhase = %q, want xrefs (trimmed)", s.lastPhase)
	}
}

func TestProgressSampler_Buckets(t *testing.T) {
	s := NewProgressSampler(10)

	s.ShouldLog("batches", 0, 200)
	if s.ShouldLog("batches", 19, 200) {
		t.Error("9.5% should stay in bucket 0")
	}
	if !s.ShouldLog("batches", 20, 200) {
		t.Error("10% should cross into bucket 1")
	}
	if !s.ShouldLog("batches", 200, 200) {
		t.Error("100% should log")
	}
	if s.ShouldLog("batches", 250, 200) {
		t.Error("values past total should clamp to the 100% bucket")
	}
}

func TestProgressSampler_UnknownTotal(t *testing.T) {
	s := NewProgressSampler(10)
	if !s.ShouldLog("scan", 5, 0) {
		t.Error("first call should log on phase change")
	}
	if s.ShouldLog("scan", 500, 0) {
		t.Error("unknown total should only log on phase change")
	}
}

func TestProgressSampler_Reset(t *testing.T) {
	s := NewProgressSampler(10)
	s.ShouldLog("merge", 50, 100)
	s.Reset()
	if s.lastPhase != "" || s.lastBucket != -1 {
		t.Errorf("Reset left state phase=%q bucket=%d", s.lastPhase, s.lastBucket)
	}
	if !s.ShouldLog("merge", 50, 100) {
		t.Error("expected log after reset")
	}
}
