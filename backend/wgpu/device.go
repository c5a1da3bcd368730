//go:build !nogpu

package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gsdirect"
	"github.com/gogpu/gsdirect/backend"

	_ "github.com/gogpu/wgpu/hal/vulkan" // register the Vulkan HAL backend
)

func init() {
	backend.Register(backend.BackendWGPU, func(width, height int) (backend.Target, error) {
		return New(width, height)
	})
}

// Errors returned while opening a device.
var (
	// ErrNoAdapter is returned when no GPU adapter can be found.
	ErrNoAdapter = errors.New("wgpu: no GPU adapter found")

	// ErrProvider is returned when a DeviceProvider does not expose HAL
	// device and queue objects.
	ErrProvider = errors.New("wgpu: provider does not expose HAL types")
)

// GPUInfo contains information about the selected GPU.
type GPUInfo struct {
	// Name is the GPU name (e.g., "NVIDIA GeForce RTX 3080").
	Name string
	// Vendor is the GPU vendor.
	Vendor string
	// DeviceType is the type of GPU (discrete, integrated, etc.).
	DeviceType gputypes.DeviceType
	// Backend is the graphics API in use.
	Backend gputypes.Backend
	// Driver is the driver version string.
	Driver string
}

// String returns a human-readable description of the GPU.
func (g *GPUInfo) String() string {
	return fmt.Sprintf("%s (%s, %s)", g.Name, g.DeviceType, g.Backend)
}

// openDevice opens the first discrete or integrated Vulkan adapter, or the
// first adapter of any kind if there is none.
func openDevice() (hal.Instance, hal.OpenDevice, *GPUInfo, error) {
	b, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, hal.OpenDevice{}, nil, fmt.Errorf("%w: vulkan backend not available", ErrNoAdapter)
	}
	instance, err := b.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, hal.OpenDevice{}, nil, fmt.Errorf("create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, hal.OpenDevice{}, nil, ErrNoAdapter
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}

	open, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, hal.OpenDevice{}, nil, fmt.Errorf("open device: %w", err)
	}
	info := &GPUInfo{
		Name:       selected.Info.Name,
		Vendor:     selected.Info.Vendor,
		DeviceType: selected.Info.DeviceType,
		Backend:    selected.Info.Backend,
		Driver:     selected.Info.Driver,
	}
	return instance, open, info, nil
}

// New opens a GPU and creates a backend rendering into a width x height
// offscreen frame.
func New(width, height int) (*Backend, error) {
	instance, open, info, err := openDevice()
	if err != nil {
		return nil, err
	}
	b, err := newBackend(open.Device, open.Queue, width, height)
	if err != nil {
		open.Device.Destroy()
		instance.Destroy()
		return nil, err
	}
	b.instance = instance
	b.ownsDevice = true
	b.info = info
	gsdirect.Logger().Info("wgpu backend initialized", "gpu", info.String(), "width", width, "height", height)
	return b, nil
}

// NewFromProvider creates a backend on the device of a host application,
// such as a gogpu window. The provider must expose its HAL device and
// queue through HalDevice() and HalQueue(). The device is not destroyed by
// Close.
func NewFromProvider(provider gpucontext.DeviceProvider, width, height int) (*Backend, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrProvider)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrProvider)
	}

	b, err := newBackend(device, queue, width, height)
	if err != nil {
		return nil, err
	}
	ai := provider.AdapterInfo()
	b.info = &GPUInfo{Name: ai.Name}
	gsdirect.Logger().Info("wgpu backend using shared device", "gpu", ai.Name, "type", ai.Type.String())
	return b, nil
}

// NewWithDevice creates a backend on an already opened device. The device
// is not destroyed by Close.
func NewWithDevice(device hal.Device, queue hal.Queue, width, height int) (*Backend, error) {
	return newBackend(device, queue, width, height)
}
