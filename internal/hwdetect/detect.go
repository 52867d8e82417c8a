// Package hwdetect performs live OS hardware detection (RAM, CPU, GPU) and
// hands the result to the hardware package as a loose, JSON-shaped
// descriptor. This is the "live hardware probing" collaborator named in
// the selector's scope as external to the core: it never decides fit or
// budget, it only observes.
package hwdetect

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

const gb = 1024 * 1024 * 1024

// GPUReading is one detected GPU.
type GPUReading struct {
	Name          string
	VRAMGB        *float64
	Backend       string
	Count         uint32
	UnifiedMemory bool
}

// Reading is the raw, OS-observed hardware snapshot. Field names here are
// our own; Raw() re-renders them under the several historic spellings the
// hardware.Normalize contract has to tolerate (memory.total vs
// memory.totalGB vs total_ram_gb, gpu.vram vs gpu.vramGB vs
// gpu.totalVRAM, ...), since callers other than this package (config
// files, a remote agent, a stale cache) may supply any of them.
type Reading struct {
	TotalRAMGB     float64
	AvailableRAMGB float64
	PhysicalCores  int
	Threads        int
	CPUName        string
	Gpus           []GPUReading
}

// Detect returns a live hardware reading for the current machine.
func Detect() (*Reading, error) {
	totalRAMGB, availableRAMGB, err := detectMemory()
	if err != nil {
		return nil, fmt.Errorf("mem: %w", err)
	}

	cpuName, physicalCores, threads := detectCPU()
	gpus := detectAllGPUs(totalRAMGB, cpuName)
	sort.Slice(gpus, func(i, j int) bool {
		vi, vj := 0.0, 0.0
		if gpus[i].VRAMGB != nil {
			vi = *gpus[i].VRAMGB
		}
		if gpus[j].VRAMGB != nil {
			vj = *gpus[j].VRAMGB
		}
		return vj < vi
	})

	return &Reading{
		TotalRAMGB:     totalRAMGB,
		AvailableRAMGB: availableRAMGB,
		PhysicalCores:  physicalCores,
		Threads:        threads,
		CPUName:        cpuName,
		Gpus:           gpus,
	}, nil
}

// Raw renders the reading as a loose JSON-ish map using one of several
// historically-seen field spellings, so hardware.Normalize's tolerance
// for heterogeneous input has a real producer to exercise.
func (r *Reading) Raw() map[string]interface{} {
	out := map[string]interface{}{
		"cpu": map[string]interface{}{
			"architecture":   runtime.GOARCH,
			"physical_cores": r.PhysicalCores,
			"threads":        r.Threads,
			"brand":          r.CPUName,
		},
		"memory": map[string]interface{}{
			"totalGB":     r.TotalRAMGB,
			"availableGB": r.AvailableRAMGB,
		},
	}
	if len(r.Gpus) > 0 {
		primary := r.Gpus[0]
		gpu := map[string]interface{}{
			"model":        primary.Name,
			"count":        primary.Count,
			"unified":      primary.UnifiedMemory,
			"backend_hint": primary.Backend,
		}
		if primary.VRAMGB != nil {
			gpu["vramGB"] = *primary.VRAMGB
		}
		var inv []map[string]interface{}
		for _, g := range r.Gpus {
			e := map[string]interface{}{"name": g.Name, "count": g.Count, "unified": g.UnifiedMemory}
			if g.VRAMGB != nil {
				e["vram"] = *g.VRAMGB
			}
			inv = append(inv, e)
		}
		gpu["inventory"] = inv
		out["gpu"] = gpu
	}
	return out
}

func detectMemory() (total, available float64, err error) {
	v, err := mem.VirtualMemory()
	if err != nil {
		return 0, 0, err
	}
	total = float64(v.Total) / float64(gb)
	available = float64(v.Available) / float64(gb)
	if v.Available == 0 && v.Total > 0 {
		available = availableRAMFallback(total)
	}
	return total, available, nil
}

func availableRAMFallback(totalGB float64) float64 {
	if runtime.GOOS == "darwin" {
		if avail := availableFromVMStat(); avail > 0 {
			return avail
		}
	}
	return totalGB * 0.8
}

func availableFromVMStat() float64 {
	out, err := exec.Command("vm_stat").Output()
	if err != nil {
		return 0
	}
	var pageSize uint64 = 16384
	var free, inactive, purgeable uint64
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "Mach Virtual Memory Statistics:") {
			if i := strings.Index(line, "page size of "); i >= 0 {
				rest := line[i+13:]
				if j := strings.IndexAny(rest, " "); j >= 0 {
					if n, err := strconv.ParseUint(rest[:j], 10, 64); err == nil {
						pageSize = n
					}
				}
			}
		}
		if strings.HasPrefix(line, "Pages free:") {
			fmt.Sscanf(strings.Trim(strings.TrimPrefix(line, "Pages free:"), " ."), "%d", &free)
		}
		if strings.HasPrefix(line, "Pages inactive:") {
			fmt.Sscanf(strings.Trim(strings.TrimPrefix(line, "Pages inactive:"), " ."), "%d", &inactive)
		}
		if strings.HasPrefix(line, "Pages purgeable:") {
			fmt.Sscanf(strings.Trim(strings.TrimPrefix(line, "Pages purgeable:"), " ."), "%d", &purgeable)
		}
	}
	avail := (free + inactive + purgeable) * pageSize
	if avail == 0 {
		return 0
	}
	return float64(avail) / float64(gb)
}

func detectCPU() (name string, physicalCores, threads int) {
	threads = runtime.NumCPU()
	physicalCores = threads
	name = "Unknown CPU"
	infos, err := cpu.Info()
	if err == nil && len(infos) > 0 {
		name = infos[0].ModelName
		if name == "" {
			name = infos[0].VendorID
		}
		if infos[0].Cores > 0 {
			physicalCores = int(infos[0].Cores)
		}
	}
	return name, physicalCores, threads
}

func detectAllGPUs(totalRAMGB float64, cpuName string) []GPUReading {
	var gpus []GPUReading
	gpus = append(gpus, detectNvidiaGPUs()...)
	if amd := detectAMDROCM(); amd != nil {
		gpus = append(gpus, *amd)
	} else if amd := detectAMDSysfs(); amd != nil {
		gpus = append(gpus, *amd)
	}
	if vram := detectAppleGPU(totalRAMGB, cpuName); vram > 0 {
		name := "Apple Silicon"
		if strings.Contains(strings.ToLower(cpuName), "apple") {
			name = cpuName
		}
		gpus = append(gpus, GPUReading{Name: name, VRAMGB: &vram, Backend: "metal", Count: 1, UnifiedMemory: true})
	}
	return gpus
}

func detectNvidiaGPUs() []GPUReading {
	cmd := exec.Command("nvidia-smi", "--query-gpu=memory.total,name", "--format=csv,noheader,nounits")
	out, err := cmd.Output()
	if err != nil {
		return nil
	}
	var totalVRAMMB float64
	var count uint32
	var firstName string
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ",", 2)
		var vramMB float64
		if _, err := fmt.Sscanf(strings.TrimSpace(parts[0]), "%f", &vramMB); err != nil {
			continue
		}
		totalVRAMMB += vramMB
		count++
		if firstName == "" && len(parts) > 1 {
			firstName = strings.TrimSpace(parts[1])
		}
	}
	if count == 0 {
		return nil
	}
	if firstName == "" {
		firstName = "NVIDIA GPU"
	}
	vramGB := totalVRAMMB / 1024
	return []GPUReading{{Name: firstName, VRAMGB: &vramGB, Backend: "cuda", Count: count}}
}

func detectAMDROCM() *GPUReading {
	cmd := exec.Command("rocm-smi", "--showmeminfo", "vram")
	out, err := cmd.Output()
	if err != nil {
		return nil
	}
	var totalBytes uint64
	var gpuCount uint32
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.ToLower(sc.Text())
		if strings.Contains(line, "total") && !strings.Contains(line, "used") {
			fields := strings.Fields(sc.Text())
			for i := len(fields) - 1; i >= 0; i-- {
				if n, err := strconv.ParseUint(fields[i], 10, 64); err == nil && n > 0 {
					totalBytes += n
					gpuCount++
					break
				}
			}
		}
	}
	if gpuCount == 0 {
		return nil
	}
	v := float64(totalBytes) / float64(gb)
	return &GPUReading{Name: "AMD GPU", VRAMGB: &v, Backend: "rocm", Count: gpuCount}
}

func detectAMDSysfs() *GPUReading {
	if runtime.GOOS != "linux" {
		return nil
	}
	entries, err := os.ReadDir("/sys/class/drm")
	if err != nil {
		return nil
	}
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || !strings.HasPrefix(name, "card") || strings.Contains(name, "-") {
			continue
		}
		vendor, _ := os.ReadFile(filepath.Join("/sys/class/drm", name, "device/vendor"))
		if strings.TrimSpace(string(vendor)) != "0x1002" {
			continue
		}
		var vramGB *float64
		data, err := os.ReadFile(filepath.Join("/sys/class/drm", name, "device/mem_info_vram_total"))
		if err == nil {
			var bytesVal uint64
			if _, err := fmt.Sscanf(strings.TrimSpace(string(data)), "%d", &bytesVal); err == nil && bytesVal > 0 {
				v := float64(bytesVal) / float64(gb)
				vramGB = &v
			}
		}
		return &GPUReading{Name: "AMD GPU", VRAMGB: vramGB, Backend: "vulkan", Count: 1}
	}
	return nil
}

func detectAppleGPU(totalRAMGB float64, cpuName string) float64 {
	if runtime.GOOS != "darwin" {
		return 0
	}
	out, err := exec.Command("system_profiler", "SPDisplaysDataType").Output()
	if err != nil {
		return 0
	}
	for _, line := range strings.Split(string(out), "\n") {
		l := strings.ToLower(line)
		if strings.Contains(l, "apple m") || strings.Contains(l, "apple gpu") {
			return totalRAMGB
		}
	}
	return 0
}

var (
	wslOnce sync.Once
	wslVal  bool
)

// IsRunningInWSL returns true if running under WSL (Linux only).
func IsRunningInWSL() bool {
	wslOnce.Do(func() {
		if runtime.GOOS != "linux" {
			return
		}
		if os.Getenv("WSL_INTEROP") != "" || os.Getenv("WSL_DISTRO_NAME") != "" {
			wslVal = true
			return
		}
		for _, p := range []string{"/proc/sys/kernel/osrelease", "/proc/version"} {
			b, _ := os.ReadFile(p)
			if strings.Contains(strings.ToLower(string(b)), "microsoft") {
				wslVal = true
				return
			}
		}
	})
	return wslVal
}
