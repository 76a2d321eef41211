package vulkan

/**
 * @brief Max number of material instances
 * @todo TODO: make configurable
 */
const VULKAN_MAX_MATERIAL_COUNT uint32 = 1024

/**
 * @brief Max number of simultaneously uploaded geometries
 * @todo TODO: make configurable
 */
const VULKAN_MAX_GEOMETRY_COUNT uint32 = 4096

/**
 * @brief Max number of UI control instances
 * @todo TODO: make configurable
 */
const VULKAN_MAX_UI_COUNT uint32 = 1024

/**
 * @brief The binding capacity of VulkanDescriptorSetConfig.Bindings.
 */
const VULKAN_SHADER_MAX_BINDINGS uint8 = 2
