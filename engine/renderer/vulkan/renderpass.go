package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

type VulkanRenderPassState int

const (
	READY VulkanRenderPassState = iota
	RECORDING
	IN_RENDER_PASS
	RECORDING_ENDED
	SUBMITTED
	NOT_ALLOCATED
)

// VulkanRenderPass wraps a single VkRenderPass plus the clear rect and
// clear values it was created with. Vulkan bakes the clear op into the
// pass begin rather than exposing a standalone clear call, so the
// values engine/gpu.Context.Clear records are stashed here until the
// next RenderpassBegin.
type VulkanRenderPass struct {
	Handle vk.RenderPass

	X, Y, W, H float32
	R, G, B, A float32
	Depth float32
	Stencil uint32

	HasPrevPass bool
	HasNextPass bool

	State VulkanRenderPassState
}

// RenderpassCreate builds a render pass with one color attachment and,
// when depth != 0, a depth/stencil attachment. hasPrevPass/hasNextPass
// select the attachment's initial/final layout so chained passes never
// pay for an unnecessary layout transition.
func RenderpassCreate(context *VulkanContext, x, y, w, h, r, g, b, a, depth float32, stencil uint32, hasPrevPass, hasNextPass bool) (*VulkanRenderPass, error) {
	outRenderpass := &VulkanRenderPass{
		X: x, Y: y, W: w, H: h,
		R: r, G: g, B: b, A: a,
		Depth: depth,
		Stencil: stencil,
		HasPrevPass: hasPrevPass,
		HasNextPass: hasNextPass,
		State: READY,
	}

	attachmentDescriptions := make([]vk.AttachmentDescription, 0, 2)

	colorAttachment := vk.AttachmentDescription{
		Format: context.Swapchain.ImageFormat.Format,
		Samples: vk.SampleCount1Bit,
		LoadOp: vk.AttachmentLoadOpClear,
		StoreOp: vk.AttachmentStoreOpStore,
		StencilLoadOp: vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout: vk.ImageLayoutUndefined,
		FinalLayout: vk.ImageLayoutPresentSrc,
	}
	if hasPrevPass {
		colorAttachment.InitialLayout = vk.ImageLayoutColorAttachmentOptimal
	}
	if hasNextPass {
		colorAttachment.FinalLayout = vk.ImageLayoutColorAttachmentOptimal
	}
	attachmentDescriptions = append(attachmentDescriptions, colorAttachment)

	colorAttachmentReference := vk.AttachmentReference{
		Attachment: 0,
		Layout: vk.ImageLayoutColorAttachmentOptimal,
	}

	subpass := vk.SubpassDescription{
		PipelineBindPoint: vk.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments: []vk.AttachmentReference{colorAttachmentReference},
	}

	hasDepth := depth != 0
	var depthAttachmentReference vk.AttachmentReference
	if hasDepth {
		depthAttachment := vk.AttachmentDescription{
			Format: context.Device.DepthFormat,
			Samples: vk.SampleCount1Bit,
			LoadOp: vk.AttachmentLoadOpClear,
			StoreOp: vk.AttachmentStoreOpDontCare,
			StencilLoadOp: vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout: vk.ImageLayoutUndefined,
			FinalLayout: vk.ImageLayoutDepthStencilAttachmentOptimal,
		}
		attachmentDescriptions = append(attachmentDescriptions, depthAttachment)

		depthAttachmentReference = vk.AttachmentReference{
			Attachment: 1,
			Layout: vk.ImageLayoutDepthStencilAttachmentOptimal,
		}
		subpass.PDepthStencilAttachment = &depthAttachmentReference
	}

	dependency := vk.SubpassDependency{
		SrcSubpass: vk.SubpassExternal,
		DstSubpass: 0,
		SrcStageMask: vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		SrcAccessMask: 0,
		DstStageMask: vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentReadBit) | vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
	}

	renderPassCreateInfo := vk.RenderPassCreateInfo{
		SType: vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachmentDescriptions)),
		PAttachments: attachmentDescriptions,
		SubpassCount: 1,
		PSubpasses: []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies: []vk.SubpassDependency{dependency},
	}

	if res := vk.CreateRenderPass(context.Device.LogicalDevice, &renderPassCreateInfo, context.Allocator, &outRenderpass.Handle); !VulkanResultIsSuccess(res) {
		return nil, fmt.Errorf("failed to create renderpass: %s", VulkanResultString(res, true))
	}

	return outRenderpass, nil
}

func (vr *VulkanRenderPass) RenderpassDestroy(context *VulkanContext) {
	if vr.Handle != nil {
		vk.DestroyRenderPass(context.Device.LogicalDevice, vr.Handle, context.Allocator)
		vr.Handle = nil
	}
}

// RenderpassBegin records vkCmdBeginRenderPass using the pass's stored
// clear rect/color.
func (vr *VulkanRenderPass) RenderpassBegin(commandBuffer *VulkanCommandBuffer, frameBuffer vk.Framebuffer) {
	beginInfo := vk.RenderPassBeginInfo{
		SType: vk.StructureTypeRenderPassBeginInfo,
		RenderPass: vr.Handle,
		Framebuffer: frameBuffer,
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: int32(vr.X), Y: int32(vr.Y)},
			Extent: vk.Extent2D{Width: uint32(vr.W), Height: uint32(vr.H)},
		},
	}

	clearValues := make([]vk.ClearValue, 0, 2)
	var colorClear vk.ClearValue
	colorClear.SetColor([]float32{vr.R, vr.G, vr.B, vr.A})
	clearValues = append(clearValues, colorClear)
	if vr.Depth != 0 {
		var depthClear vk.ClearValue
		depthClear.SetDepthStencil(vr.Depth, vr.Stencil)
		clearValues = append(clearValues, depthClear)
	}
	beginInfo.ClearValueCount = uint32(len(clearValues))
	beginInfo.PClearValues = clearValues

	vk.CmdBeginRenderPass(commandBuffer.Handle, &beginInfo, vk.SubpassContentsInline)
	commandBuffer.State = COMMAND_BUFFER_STATE_IN_RENDER_PASS
}

func (vr *VulkanRenderPass) RenderpassEnd(commandBuffer *VulkanCommandBuffer) {
	vk.CmdEndRenderPass(commandBuffer.Handle)
	commandBuffer.State = COMMAND_BUFFER_STATE_RECORDING
}
