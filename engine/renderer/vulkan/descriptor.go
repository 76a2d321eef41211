package vulkan

import vk "github.com/goki/vulkan"

/**
 * @brief The configuration for a descriptor set.
 */
type VulkanDescriptorSetConfig struct {
	/** @brief The number of bindings in this set. */
	BindingCount uint8
	/** @brief An array of binding layouts for this set. */
	Bindings [VULKAN_SHADER_MAX_BINDINGS]vk.DescriptorSetLayoutBinding
	/** @brief The index of the sampler binding. */
	SamplerBindingIndex uint8
}

// Per-frame descriptor generation tracking (VulkanDescriptorState /
// VulkanShaderDescriptorSetState) is dropped: UseBindings rewrites the
// shared descriptor set on every call, so there is nothing to mark
// stale between frames.
