package vine

// keyedRand is a stateless pseudo-random source. Every draw is a pure
// function of the seed and the integer keys, so results never depend on
// call order, goroutine scheduling, or shared generator state. Growth
// keys draws by (step, bud, sample, salt) tuples.
type keyedRand struct {
	seed uint64
}

// Per-value salts keep draws sharing the same (step, bud, sample)
// coordinates uncorrelated.
const (
	saltPolar uint64 = iota + 1
	saltAzimuth
	saltDistance
	saltBud
	saltBranch
	saltLeaf
	saltJitterX
	saltJitterY
	saltJitterZ
)

// unit returns a value in [0, 1) determined entirely by the seed and keys.
func (r keyedRand) unit(keys ...uint64) float64 {
	h := mix64(r.seed)
	for _, k := range keys {
		h = mix64(h ^ k)
	}
	return float64(h>>11) / (1 << 53)
}

// mix64 is the splitmix64 finalizer, a cheap avalanche over 64 bits.
func mix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
