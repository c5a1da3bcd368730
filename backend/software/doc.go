// Package software implements a CPU reference rasterizer for gsdirect draw
// calls.
//
// Triangle strips are walked the way the GPU walks them with primitive
// restart, rasterized with edge functions and shaded with the same
// PipelineConfig the GPU backend turns into pipelines: gputypes blend
// factors and operations, depth compare, alpha test thresholds, fog and
// channel write masks. NewParallel splits each draw into row bands on a
// worker pool. It is slow but exact enough to check the output of
// the renderers in tests and to replay captures on machines without a GPU.
//
// Importing the package registers it as the "software" backend:
//
//	import _ "github.com/gogpu/gsdirect/backend/software"
package software
