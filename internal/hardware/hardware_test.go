package hardware

import "testing"

func TestNormalize_Defaults(t *testing.T) {
	p := Normalize(nil)
	if p.CPU.PhysicalCores != 4 {
		t.Errorf("cores = %d, want 4", p.CPU.PhysicalCores)
	}
	if p.MemoryTotalGB != 8 {
		t.Errorf("totalGB = %v, want 8", p.MemoryTotalGB)
	}
	if p.GPU.Type != GPUCPUOnly {
		t.Errorf("gpu type = %v, want cpu_only", p.GPU.Type)
	}
}

func TestNormalize_HeterogeneousFieldNames_TotalRAMGB(t *testing.T) {
	raw := map[string]interface{}{
		"total_ram_gb": float64(16),
		"cpu":          map[string]interface{}{"cores": float64(6)},
	}
	p := Normalize(raw)
	if p.MemoryTotalGB != 16 {
		t.Errorf("totalGB = %v, want 16", p.MemoryTotalGB)
	}
}

func TestNormalize_AppleUnified_NoVRAM(t *testing.T) {
	raw := map[string]interface{}{
		"memory": map[string]interface{}{"totalGB": float64(48)},
		"cpu":    map[string]interface{}{"brand": "Apple M4 Pro", "cores": float64(12)},
		"gpu":    map[string]interface{}{"model": "Apple M4 Pro GPU"},
	}
	p := Normalize(raw)
	if !p.GPU.Unified {
		t.Fatalf("expected unified = true")
	}
	if p.GPU.Type != GPUAppleSilicon {
		t.Errorf("gpu type = %v, want apple_silicon", p.GPU.Type)
	}
	if p.Budget() != p.UsableMemGB {
		t.Errorf("budget = %v, want usableMemGB %v", p.Budget(), p.UsableMemGB)
	}
}

func TestNormalize_MultiGPU_VRAMSummedFromPerGPU(t *testing.T) {
	// S3: 3x mixed NVIDIA GPUs, per-GPU VRAM 12 GB reported ambiguously.
	raw := map[string]interface{}{
		"memory": map[string]interface{}{"totalGB": float64(64)},
		"gpu": map[string]interface{}{
			"model":    "NVIDIA RTX 3080",
			"gpuCount": float64(3),
			"vram":     float64(12),
		},
	}
	p := Normalize(raw)
	if p.GPU.TotalVRAMGB != 36 {
		t.Errorf("vramGB = %v, want 36", p.GPU.TotalVRAMGB)
	}
	if !p.GPU.IsMultiGPU {
		t.Errorf("expected isMultiGPU = true")
	}
	if p.GPU.Type != GPUNvidia {
		t.Errorf("gpu type = %v, want nvidia", p.GPU.Type)
	}
}

func TestNormalize_VRAMPriority_ExplicitTotalWins(t *testing.T) {
	raw := map[string]interface{}{
		"memory": map[string]interface{}{"totalGB": float64(32)},
		"gpu": map[string]interface{}{
			"model":     "NVIDIA RTX 4090",
			"totalVRAM": float64(24),
			"vramGB":    float64(99),
		},
	}
	p := Normalize(raw)
	if p.GPU.TotalVRAMGB != 24 {
		t.Errorf("vramGB = %v, want 24 (explicit totalVRAM should win)", p.GPU.TotalVRAMGB)
	}
}

func TestNormalize_InventorySum(t *testing.T) {
	raw := map[string]interface{}{
		"memory": map[string]interface{}{"totalGB": float64(64)},
		"gpu": map[string]interface{}{
			"model": "NVIDIA",
			"inventory": []interface{}{
				map[string]interface{}{"name": "gpu0", "vram": float64(24)},
				map[string]interface{}{"name": "gpu1", "vram": float64(12)},
			},
		},
	}
	p := Normalize(raw)
	if p.GPU.TotalVRAMGB != 36 {
		t.Errorf("vramGB = %v, want 36", p.GPU.TotalVRAMGB)
	}
	if p.GPU.GPUCount != 2 {
		t.Errorf("gpuCount = %v, want 2", p.GPU.GPUCount)
	}
}

func TestBudget_DedicatedGPU(t *testing.T) {
	raw := map[string]interface{}{
		"memory": map[string]interface{}{"totalGB": float64(32)},
		"gpu":    map[string]interface{}{"model": "NVIDIA RTX 3090", "vramGB": float64(24)},
	}
	p := Normalize(raw)
	if p.Budget() != 24 {
		t.Errorf("budget = %v, want 24", p.Budget())
	}
}

func TestBudget_CPUOnlyFallsBackToUsableMem(t *testing.T) {
	raw := map[string]interface{}{
		"memory": map[string]interface{}{"totalGB": float64(16)},
	}
	p := Normalize(raw)
	if p.Budget() != p.UsableMemGB {
		t.Errorf("budget = %v, want usableMemGB %v", p.Budget(), p.UsableMemGB)
	}
}

func TestUsableMemGB_NonUnified(t *testing.T) {
	raw := map[string]interface{}{"memory": map[string]interface{}{"totalGB": float64(16)}}
	p := Normalize(raw)
	want := 0.8 * 16.0
	if alt := 16.0 - 2.0; alt < want {
		want = alt
	}
	if p.UsableMemGB != want {
		t.Errorf("usableMemGB = %v, want %v", p.UsableMemGB, want)
	}
}

func TestTier_MultiGPUPromotion(t *testing.T) {
	raw := map[string]interface{}{
		"memory": map[string]interface{}{"totalGB": float64(16)},
		"cpu":    map[string]interface{}{"cores": float64(4)},
		"gpu": map[string]interface{}{
			"model":    "NVIDIA",
			"gpuCount": float64(2),
			"vram":     float64(12),
		},
	}
	p := Normalize(raw)
	if tierRank(p.Tier()) < tierRank(TierHigh) {
		t.Errorf("tier = %v, want at least high for multi-gpu >=20GB", p.Tier())
	}
}

func TestFingerprint_Stable(t *testing.T) {
	raw := map[string]interface{}{
		"memory": map[string]interface{}{"totalGB": float64(32)},
		"cpu":    map[string]interface{}{"architecture": "arm64", "cores": float64(8), "brand": "Apple M3"},
	}
	p1 := Normalize(raw)
	p2 := Normalize(raw)
	if p1.Fingerprint() != p2.Fingerprint() {
		t.Errorf("fingerprint not stable: %s vs %s", p1.Fingerprint(), p2.Fingerprint())
	}
}
