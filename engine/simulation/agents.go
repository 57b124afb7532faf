package simulation

import (
	"encoding/binary"
	"math"
	"math/rand/v2"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-deferred/common"
)

// seedChunk is the number of agents one worker task fills.
const seedChunk = 8192

// Particle is one agent of the population.
type Particle struct {
	Active   uint32
	Position [2]float32
	Dir      float32
	Families [4]int32
}

// MarshalTo writes the agent into dst at off in the Particle layout.
func (p *Particle) MarshalTo(dst []byte, off int) {
	common.PutUint32(dst, off, p.Active)
	common.PutFloat32(dst, off+8, p.Position[0])
	common.PutFloat32(dst, off+12, p.Position[1])
	common.PutFloat32(dst, off+16, p.Dir)
	for i, f := range p.Families {
		common.PutUint32(dst, off+32+i*4, uint32(f))
	}
}

// ParticleAt decodes agent i from a buffer produced by SeedAgents.
func ParticleAt(b []byte, i int) Particle {
	off := i * ParticleSize
	var p Particle
	p.Active = binary.LittleEndian.Uint32(b[off:])
	p.Position[0] = math.Float32frombits(binary.LittleEndian.Uint32(b[off+8:]))
	p.Position[1] = math.Float32frombits(binary.LittleEndian.Uint32(b[off+12:]))
	p.Dir = math.Float32frombits(binary.LittleEndian.Uint32(b[off+16:]))
	for f := range p.Families {
		p.Families[f] = int32(binary.LittleEndian.Uint32(b[off+32+f*4:]))
	}
	return p
}

// SeedAgents builds the initial agent buffer: every agent active, at a random texel
// of a width x height field, with a random heading and family membership (0, 1, 1, 1).
// The population is filled in chunks on a worker pool; each chunk draws from its own
// generator derived from seed, so the result depends only on the arguments.
//
// Parameters:
//   - n: number of agents
//   - width: field width in texels
//   - height: field height in texels
//   - seed: random seed
//
// Returns:
//   - []byte: n*ParticleSize bytes ready for upload
func SeedAgents(n, width, height int, seed uint64) []byte {
	out := make([]byte, n*ParticleSize)
	if n == 0 {
		return out
	}

	chunks := (n + seedChunk - 1) / seedChunk
	lanes := min(max(runtime.NumCPU()-1, 1), chunks)

	// Each lane is a single-worker pool: Stop only reaches a pool's workers by id,
	// and a sole worker always receives its own.
	pools := make([]worker.DynamicWorkerPool, lanes)
	for i := range pools {
		pools[i] = worker.NewDynamicWorkerPool(1, (chunks+lanes-1)/lanes, time.Second)
	}
	defer func() {
		for _, pool := range pools {
			pool.Stop()
		}
	}()

	var wg sync.WaitGroup
	for c := 0; c < chunks; c++ {
		start := c * seedChunk
		end := min(start+seedChunk, n)
		id := c
		wg.Add(1)
		pools[c%lanes].SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				rng := rand.New(rand.NewPCG(seed, uint64(id)))
				for i := start; i < end; i++ {
					p := Particle{
						Active: 1,
						Position: [2]float32{
							float32(math.Round(rng.Float64() * float64(width))),
							float32(math.Round(rng.Float64() * float64(height))),
						},
						Dir:      float32(rng.Float64() * 2 * math.Pi),
						Families: [4]int32{0, 1, 1, 1},
					}
					p.MarshalTo(out, i*ParticleSize)
				}
				return nil, nil
			},
		})
	}
	wg.Wait()
	return out
}
