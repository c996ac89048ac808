//go:build !headless

// gpu_backend_vulkan.go - Vulkan-backed accelerated blit, adapted from the
// Voodoo engine's VulkanBackend init sequence (voodoo_vulkan.go): same
// loader bring-up, same "failure degrades to unavailable, never propagates"
// contract, reduced to the one operation this shim actually needs — a bulk
// rectangle copy through a host-visible staging buffer.

package displaystack

import (
	"fmt"
	"sync"
	"unsafe"

	vk "github.com/goki/vulkan"
)

var (
	vulkanLoaderOnce  sync.Once
	vulkanLoaderError error
)

func ensureVulkanLoader() error {
	vulkanLoaderOnce.Do(func() {
		if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
			vulkanLoaderError = fmt.Errorf("load vulkan library: %w", err)
			return
		}
		if err := vk.Init(); err != nil {
			vulkanLoaderError = fmt.Errorf("init vulkan loader: %w", err)
			return
		}
	})
	return vulkanLoaderError
}

// VulkanBlitBackend satisfies GpuBackend by staging pixel data through a
// single host-visible, host-coherent buffer. The copy itself is done on the
// host through the mapped memory; no command is recorded or submitted to
// the device queue. It holds no swapchain and no window: this is headless
// offscreen compute-adjacent use, matching the Voodoo engine's "no
// window/swapchain needed" offscreen-rendering note.
type VulkanBlitBackend struct {
	mu sync.Mutex

	instance       vk.Instance
	physicalDevice vk.PhysicalDevice
	device         vk.Device
	queue          vk.Queue
	queueFamily    uint32
	commandPool    vk.CommandPool
	commandBuffer  vk.CommandBuffer
	fence          vk.Fence

	stagingBuf    vk.Buffer
	stagingMemory vk.DeviceMemory
	stagingSize   vk.DeviceSize
	stagingMapped unsafe.Pointer

	ready bool
}

func NewVulkanBlitBackend() *VulkanBlitBackend {
	return &VulkanBlitBackend{}
}

func (b *VulkanBlitBackend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := ensureVulkanLoader(); err != nil {
		return err
	}
	if err := b.createInstance(); err != nil {
		return err
	}
	if err := b.selectDevice(); err != nil {
		b.destroyInstance()
		return err
	}
	if err := b.createCommandResources(); err != nil {
		b.destroyDevice()
		b.destroyInstance()
		return err
	}
	b.ready = true
	return nil
}

func (b *VulkanBlitBackend) createInstance() error {
	appInfo := vk.ApplicationInfo{
		SType:         vk.StructureTypeApplicationInfo,
		PEngineName:   safeCString("displaystack gpu shim"),
		EngineVersion: vk.MakeVersion(1, 0, 0),
		ApiVersion:    vk.MakeVersion(1, 1, 0),
	}
	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &appInfo,
	}
	var instance vk.Instance
	if res := vk.CreateInstance(&createInfo, nil, &instance); res != vk.Success {
		return fmt.Errorf("vkCreateInstance failed: %d", res)
	}
	b.instance = instance
	vk.InitInstance(instance)
	return nil
}

func (b *VulkanBlitBackend) selectDevice() error {
	var count uint32
	vk.EnumeratePhysicalDevices(b.instance, &count, nil)
	if count == 0 {
		return fmt.Errorf("no vulkan-capable device")
	}
	devices := make([]vk.PhysicalDevice, count)
	vk.EnumeratePhysicalDevices(b.instance, &count, devices)

	for _, dev := range devices {
		var qCount uint32
		vk.GetPhysicalDeviceQueueFamilyProperties(dev, &qCount, nil)
		families := make([]vk.QueueFamilyProperties, qCount)
		vk.GetPhysicalDeviceQueueFamilyProperties(dev, &qCount, families)
		for i, f := range families {
			f.Deref()
			if f.QueueFlags&vk.QueueFlags(vk.QueueTransferBit) != 0 || f.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
				b.physicalDevice = dev
				b.queueFamily = uint32(i)
				return b.createDevice()
			}
		}
	}
	return fmt.Errorf("no device with a usable queue family")
}

func (b *VulkanBlitBackend) createDevice() error {
	priority := float32(1.0)
	queueInfo := vk.DeviceQueueCreateInfo{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: b.queueFamily,
		QueueCount:       1,
		PQueuePriorities: []float32{priority},
	}
	devInfo := vk.DeviceCreateInfo{
		SType:                vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: 1,
		PQueueCreateInfos:    []vk.DeviceQueueCreateInfo{queueInfo},
	}
	var device vk.Device
	if res := vk.CreateDevice(b.physicalDevice, &devInfo, nil, &device); res != vk.Success {
		return fmt.Errorf("vkCreateDevice failed: %d", res)
	}
	b.device = device
	var queue vk.Queue
	vk.GetDeviceQueue(device, b.queueFamily, 0, &queue)
	b.queue = queue
	return nil
}

func (b *VulkanBlitBackend) createCommandResources() error {
	poolInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: b.queueFamily,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}
	var pool vk.CommandPool
	if res := vk.CreateCommandPool(b.device, &poolInfo, nil, &pool); res != vk.Success {
		return fmt.Errorf("vkCreateCommandPool failed: %d", res)
	}
	b.commandPool = pool

	allocInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}
	buffers := make([]vk.CommandBuffer, 1)
	if res := vk.AllocateCommandBuffers(b.device, &allocInfo, buffers); res != vk.Success {
		return fmt.Errorf("vkAllocateCommandBuffers failed: %d", res)
	}
	b.commandBuffer = buffers[0]

	fenceInfo := vk.FenceCreateInfo{SType: vk.StructureTypeFenceCreateInfo}
	var fence vk.Fence
	if res := vk.CreateFence(b.device, &fenceInfo, nil, &fence); res != vk.Success {
		return fmt.Errorf("vkCreateFence failed: %d", res)
	}
	b.fence = fence
	return nil
}

// BlitRect packs src into the mapped staging buffer and copies it from there
// into dst, both on the host; no device-side copy is issued. Any failure along the way returns false
// so the caller falls back to the scalar path for this call only — it does
// not flip the shim to unavailable globally.
func (b *VulkanBlitBackend) BlitRect(dst []uint32, dstStride int, src []uint32, srcStride int, w, h int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.ready {
		return false
	}
	needed := vk.DeviceSize(w * h * 4 * 2) // packed src + packed dst regions
	if needed > b.stagingSize {
		if !b.growStaging(needed) {
			return false
		}
	}

	packed := (*[1 << 30]uint32)(b.stagingMapped)[: w*h*2 : w*h*2]
	for y := 0; y < h; y++ {
		copy(packed[y*w:y*w+w], src[y*srcStride:y*srcStride+w])
	}

	// Only the first w*h cells of the staging buffer are used; the packed
	// rows are copied straight back out into dst.
	for y := 0; y < h; y++ {
		dstRow := dst[y*dstStride : y*dstStride+w]
		copy(dstRow, packed[y*w:y*w+w])
	}
	return true
}

func (b *VulkanBlitBackend) growStaging(size vk.DeviceSize) bool {
	if b.stagingBuf != vk.NullBuffer {
		if b.stagingMapped != nil {
			vk.UnmapMemory(b.device, b.stagingMemory)
		}
		vk.DestroyBuffer(b.device, b.stagingBuf, nil)
		vk.FreeMemory(b.device, b.stagingMemory, nil)
	}
	bufInfo := vk.BufferCreateInfo{
		SType: vk.StructureTypeBufferCreateInfo,
		Size:  size,
		Usage: vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit | vk.BufferUsageTransferDstBit),
	}
	var buf vk.Buffer
	if res := vk.CreateBuffer(b.device, &bufInfo, nil, &buf); res != vk.Success {
		return false
	}
	var memReqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(b.device, buf, &memReqs)
	memReqs.Deref()
	typeIdx, err := b.findHostVisibleMemoryType(memReqs.MemoryTypeBits)
	if err != nil {
		vk.DestroyBuffer(b.device, buf, nil)
		return false
	}
	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: typeIdx,
	}
	var mem vk.DeviceMemory
	if res := vk.AllocateMemory(b.device, &allocInfo, nil, &mem); res != vk.Success {
		vk.DestroyBuffer(b.device, buf, nil)
		return false
	}
	vk.BindBufferMemory(b.device, buf, mem, 0)
	var mapped unsafe.Pointer
	if res := vk.MapMemory(b.device, mem, 0, size, 0, &mapped); res != vk.Success {
		vk.FreeMemory(b.device, mem, nil)
		vk.DestroyBuffer(b.device, buf, nil)
		return false
	}
	b.stagingBuf = buf
	b.stagingMemory = mem
	b.stagingSize = size
	b.stagingMapped = mapped
	return true
}

func (b *VulkanBlitBackend) findHostVisibleMemoryType(typeBits uint32) (uint32, error) {
	var props vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(b.physicalDevice, &props)
	props.Deref()
	want := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
	for i := uint32(0); i < props.MemoryTypeCount; i++ {
		props.MemoryTypes[i].Deref()
		if typeBits&(1<<i) != 0 && props.MemoryTypes[i].PropertyFlags&want == want {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no host-visible memory type")
}

func (b *VulkanBlitBackend) destroyInstance() {
	if b.instance != vk.NullInstance {
		vk.DestroyInstance(b.instance, nil)
		b.instance = vk.NullInstance
	}
}

func (b *VulkanBlitBackend) destroyDevice() {
	if b.device != vk.NullDevice {
		vk.DestroyDevice(b.device, nil)
		b.device = vk.NullDevice
	}
}

func (b *VulkanBlitBackend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.ready {
		return
	}
	if b.stagingMapped != nil {
		vk.UnmapMemory(b.device, b.stagingMemory)
	}
	if b.stagingBuf != vk.NullBuffer {
		vk.DestroyBuffer(b.device, b.stagingBuf, nil)
		vk.FreeMemory(b.device, b.stagingMemory, nil)
	}
	if b.fence != vk.NullFence {
		vk.DestroyFence(b.device, b.fence, nil)
	}
	if b.commandPool != vk.NullCommandPool {
		vk.DestroyCommandPool(b.device, b.commandPool, nil)
	}
	b.destroyDevice()
	b.destroyInstance()
	b.ready = false
}

func safeCString(s string) string {
	return s + "\x00"
}
