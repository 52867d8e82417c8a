package models

// QuantHierarchy lists quantizations from best quality to most compressed.
// Quant selection and sizeByQuant expansion both walk this ladder.
var QuantHierarchy = []string{"Q8_0", "Q6_K", "Q5_K_M", "Q4_K_M", "Q3_K", "Q2_K"}

var quantRank = func() map[string]int {
	m := make(map[string]int, len(QuantHierarchy))
	for i, q := range QuantHierarchy {
		m[q] = i
	}
	return m
}()

// IsKnownQuant reports whether q is a member of the fixed hierarchy.
func IsKnownQuant(q string) bool {
	_, ok := quantRank[q]
	return ok
}

// QuantLess reports whether a outranks b in quality (lower index = better).
func QuantLess(a, b string) bool {
	ra, oka := quantRank[a]
	rb, okb := quantRank[b]
	if !oka || !okb {
		return a < b
	}
	return ra < rb
}

// QuantBPP returns bytes per parameter for the given quantization.
func QuantBPP(quant string) float64 {
	switch quant {
	case "F32":
		return 4.0
	case "F16", "BF16":
		return 2.0
	case "Q8_0":
		return 1.05
	case "Q6_K":
		return 0.80
	case "Q5_K_M":
		return 0.68
	case "Q4_K_M", "Q4_0":
		return 0.58
	case "Q3_K", "Q3_K_M":
		return 0.48
	case "Q2_K":
		return 0.37
	default:
		return 0.58
	}
}

// QuantSpeedMultiplier returns the relative inference speed factor for the quantization.
func QuantSpeedMultiplier(quant string) float64 {
	switch quant {
	case "F16", "BF16":
		return 0.6
	case "Q8_0":
		return 0.8
	case "Q6_K":
		return 0.95
	case "Q5_K_M":
		return 1.0
	case "Q4_K_M", "Q4_0":
		return 1.15
	case "Q3_K", "Q3_K_M":
		return 1.25
	case "Q2_K":
		return 1.35
	default:
		return 1.0
	}
}

// QuantQualityPenalty returns the quality score penalty for the quantization.
func QuantQualityPenalty(quant string) float64 {
	switch quant {
	case "F16", "BF16", "Q8_0":
		return 0.0
	case "Q6_K":
		return -1.0
	case "Q5_K_M":
		return -2.0
	case "Q4_K_M", "Q4_0":
		return -5.0
	case "Q3_K", "Q3_K_M":
		return -8.0
	case "Q2_K":
		return -12.0
	default:
		return -5.0
	}
}
