package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/ironspire/engine/engine/core"
)

const VULKAN_MAX_REGISTERED_RENDERPASSES uint32 = 31

/**
 * @brief Represents a Vulkan-specific buffer.
 * Used to load data onto the GPU.
 */
type VulkanBuffer struct {
	/** @brief The Handle to the internal buffer. */
	Handle vk.Buffer
	/** @brief The Usage flags. */
	Usage vk.BufferUsageFlags
	/** @brief Indicates if the buffer's memory is currently locked. */
	IsLocked bool
	/** @brief The Memory used by the buffer. */
	Memory vk.DeviceMemory
	/** @brief The memory requirements for this buffer. */
	MemoryRequirements vk.MemoryRequirements
	/** @brief The index of the memory used by the buffer. */
	MemoryIndex int32
	/** @brief The property flags for the memory used by the buffer. */
	MemoryPropertyFlags uint32
	/** @brief The total size in bytes requested at creation. */
	Size uint64
}

// VulkanContext holds every piece of Vulkan bring-up state: instance,
// device, swapchain, the single render pass the gpu.Context adapter
// drives, and the per-frame sync objects. It is deliberately free of
// any renderer-specific metadata type so engine/gpu's Context contract
// is the only thing built on top of it.
type VulkanContext struct {
	/** @brief The time in seconds since the last frame. */
	FrameDeltaTime float32
	// The framebuffer's current width.
	FramebufferWidth uint32
	// The framebuffer's current height.
	FramebufferHeight uint32
	// Current generation of framebuffer size. If it does not match FramebufferSizeLastGeneration,
	// a new one should be generated.
	FramebufferSizeGeneration uint64
	// The generation of the framebuffer when it was last created. Set to FramebufferSizeGeneration
	// when updated.
	FramebufferSizeLastGeneration uint64

	Instance vk.Instance
	Allocator *vk.AllocationCallbacks
	Surface vk.Surface

	// TODO: only in DEBUG mode
	debugMessenger vk.DebugReportCallback

	Device *VulkanDevice

	Swapchain *VulkanSwapchain

	// MainRenderPass is the single pass the default framebuffer's
	// begin/end frame bracket runs through. Named pass chains
	// (engine/renderpass.Chain) each own their own VulkanRenderPass
	// wrapping a VulkanFramebuffer built off an engine/gpu.Framebuffer.
	MainRenderPass *VulkanRenderPass

	GraphicsCommandBuffers []*VulkanCommandBuffer
	ImageAvailableSemaphores []vk.Semaphore
	QueueCompleteSemaphores []vk.Semaphore

	InFlightFenceCount uint32
	InFlightFences []*VulkanFence

	// Holds pointers to fences which exist and are owned elsewhere.
	ImagesInFlight []*VulkanFence

	ImageIndex uint32
	CurrentFrame uint32

	RecreatingSwapchain bool

	/** @brief Indicates if multi-threading is supported by this device. */
	MultithreadingEnabled bool
}

func (vc *VulkanContext) FindMemoryIndex(typeFilter, propertyFlags uint32) int32 {
	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(vc.Device.PhysicalDevice, &memoryProperties)
	memoryProperties.Deref()

	for i := uint32(0); i < memoryProperties.MemoryTypeCount; i++ {
		// Check each memory type to see if its bit is set to 1.
		memoryProperties.MemoryTypes[i].Deref()
		if (typeFilter&(1<<i)) != 0 && (uint32(memoryProperties.MemoryTypes[i].PropertyFlags)&propertyFlags) == propertyFlags {
			return int32(i)
		}
	}
	core.LogWarn("Unable to find suitable memory type!")
	return -1
}
