package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
)

// VulkanShaderStage is one compiled SPIR-V module bound into a
// pipeline's shader stage array (vertex, fragment, or compute).
type VulkanShaderStage struct {
	Handle vk.ShaderModule
	StageCreateInfo vk.PipelineShaderStageCreateInfo
}

// CreateShaderStage compiles precompiled SPIR-V bytecode into a shader
// module and builds its pipeline stage info. engine/gpu.ShaderDesc
// carries the source as whatever the caller's loader already resolved
// to bytes (NBR loader registry reads the.spv bytecode off
// disk; this function never touches the filesystem itself).
func CreateShaderStage(context *VulkanContext, bytecode []byte, stage vk.ShaderStageFlagBits) (*VulkanShaderStage, error) {
	out := &VulkanShaderStage{}

	createInfo := vk.ShaderModuleCreateInfo{
		SType: vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(bytecode)),
		PCode: (*uint32)(unsafe.Pointer(&bytecode[0])),
	}

	if res := vk.CreateShaderModule(context.Device.LogicalDevice, &createInfo, context.Allocator, &out.Handle); !VulkanResultIsSuccess(res) {
		return nil, fmt.Errorf("failed to create shader module: %s", VulkanResultString(res, true))
	}

	out.StageCreateInfo = vk.PipelineShaderStageCreateInfo{
		SType: vk.StructureTypePipelineShaderStageCreateInfo,
		Stage: stage,
		Module: out.Handle,
		PName: "main\x00",
	}

	return out, nil
}

func (s *VulkanShaderStage) Destroy(context *VulkanContext) {
	if s.Handle != nil {
		vk.DestroyShaderModule(context.Device.LogicalDevice, s.Handle, context.Allocator)
		s.Handle = nil
	}
}
