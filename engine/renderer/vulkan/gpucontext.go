package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/ironspire/engine/engine/core"
	"github.com/ironspire/engine/engine/gpu"
	"github.com/ironspire/engine/engine/platform"
)

// Context is the concrete engine/gpu.Context implementation: a thin
// seam over VulkanRenderer's bring-up/frame-bracket plumbing and a
// single shared descriptor set. Every method records directly into
// the frame's one persistent command buffer rather than queuing work
// across frames. BeginFrame/EndFrame from backend.go supply the
// low-level image-acquire/submit/present bracket; Context only
// decides when that bracket opens (on the first call of a frame) and
// closes (Present).
const (
	maxBufferBindings = 16
	maxTextureBindings = 16
)

type Context struct {
	renderer *VulkanRenderer
	vctx *VulkanContext

	stateMask gpu.StateMask

	descriptorPool vk.DescriptorPool
	descriptorSetLayout vk.DescriptorSetLayout
	descriptorSet vk.DescriptorSet

	currentTarget *vulkanFramebuffer
	currentPipeline *vulkanPipeline
	pendingClear [4]float32
	frameBegun bool
	bindlessCounter uint64
}

// NewContext brings up a full Vulkan instance/device/swapchain and
// returns the gpu.Context seam engine/facade.Init is built against.
func NewContext(p *platform.Platform, appName string, width, height uint32, cfg gpu.ContextConfig) (*Context, error) {
	r := New(p)
	if err := r.Initialize(appName, width, height); err != nil {
		return nil, fmt.Errorf("vulkan renderer initialize: %w", err)
	}

	c := &Context{renderer: r, vctx: r.context, stateMask: cfg.StatesMask}
	if err := c.createDescriptorSet(); err != nil {
		return nil, err
	}
	return c, nil
}

// Destroy tears down the underlying Vulkan instance/device/swapchain.
// Not part of gpu.Context; callers that own a *Context reach it
// directly or through the optional-destroy assertion in
// engine.Application.Shutdown.
func (c *Context) Destroy() error {
	return c.renderer.Shutdown()
}

func (c *Context) createDescriptorSet() error {
	bindings := make([]vk.DescriptorSetLayoutBinding, 0, maxBufferBindings+maxTextureBindings)
	for i := 0; i < maxBufferBindings; i++ {
		bindings = append(bindings, vk.DescriptorSetLayoutBinding{
			Binding: uint32(i),
			DescriptorType: vk.DescriptorTypeStorageBuffer,
			DescriptorCount: 1,
			StageFlags: vk.ShaderStageFlags(vk.ShaderStageVertexBit) | vk.ShaderStageFlags(vk.ShaderStageFragmentBit) | vk.ShaderStageFlags(vk.ShaderStageComputeBit),
		})
	}
	for i := 0; i < maxTextureBindings; i++ {
		bindings = append(bindings, vk.DescriptorSetLayoutBinding{
			Binding: uint32(maxBufferBindings + i),
			DescriptorType: vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: 1,
			StageFlags: vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		})
	}

	layoutInfo := vk.DescriptorSetLayoutCreateInfo{
		SType: vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings: bindings,
	}
	if res := vk.CreateDescriptorSetLayout(c.vctx.Device.LogicalDevice, &layoutInfo, c.vctx.Allocator, &c.descriptorSetLayout); !VulkanResultIsSuccess(res) {
		return fmt.Errorf("failed to create descriptor set layout: %s", VulkanResultString(res, true))
	}

	poolSizes := []vk.DescriptorPoolSize{
		{Type: vk.DescriptorTypeStorageBuffer, DescriptorCount: maxBufferBindings},
		{Type: vk.DescriptorTypeCombinedImageSampler, DescriptorCount: maxTextureBindings},
	}
	poolInfo := vk.DescriptorPoolCreateInfo{
		SType: vk.StructureTypeDescriptorPoolCreateInfo,
		PoolSizeCount: uint32(len(poolSizes)),
		PPoolSizes: poolSizes,
		MaxSets: 1,
	}
	if res := vk.CreateDescriptorPool(c.vctx.Device.LogicalDevice, &poolInfo, c.vctx.Allocator, &c.descriptorPool); !VulkanResultIsSuccess(res) {
		return fmt.Errorf("failed to create descriptor pool: %s", VulkanResultString(res, true))
	}

	allocInfo := vk.DescriptorSetAllocateInfo{
		SType: vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool: c.descriptorPool,
		DescriptorSetCount: 1,
		PSetLayouts: []vk.DescriptorSetLayout{c.descriptorSetLayout},
	}
	sets := make([]vk.DescriptorSet, 1)
	if res := vk.AllocateDescriptorSets(c.vctx.Device.LogicalDevice, &allocInfo, &sets[0]); !VulkanResultIsSuccess(res) {
		return fmt.Errorf("failed to allocate descriptor set: %s", VulkanResultString(res, true))
	}
	c.descriptorSet = sets[0]
	return nil
}

func (c *Context) commandBuffer() *VulkanCommandBuffer {
	return c.vctx.GraphicsCommandBuffers[c.vctx.ImageIndex]
}

// ensureFrame opens the BeginFrame bracket the first time any command
// is issued in a frame. Nothing in gpu.Context's contract requires a
// separate "begin frame" call — treats the whole call sequence
// between two Presents as one frame.
func (c *Context) ensureFrame() {
	if c.frameBegun {
		return
	}
	if err := c.renderer.BeginFrame(float64(c.vctx.FrameDeltaTime)); err != nil {
		core.LogError("gpu: BeginFrame failed: %s", err)
		return
	}
	c.frameBegun = true
}

func (c *Context) SetState(state gpu.State, enabled bool) {
	if enabled {
		c.stateMask |= gpu.MaskOf(state)
	} else {
		c.stateMask &^= gpu.StateMask(1 << uint(state))
	}
}

func (c *Context) SetViewport(x, y, w, h uint32) {
	c.ensureFrame()
	viewport := vk.Viewport{X: float32(x), Y: float32(y), Width: float32(w), Height: float32(h), MinDepth: 0, MaxDepth: 1}
	vk.CmdSetViewport(c.commandBuffer().Handle, 0, 1, []vk.Viewport{viewport})
}

func (c *Context) SetScissor(x, y, w, h uint32) {
	c.ensureFrame()
	scissor := vk.Rect2D{Offset: vk.Offset2D{X: int32(x), Y: int32(y)}, Extent: vk.Extent2D{Width: w, Height: h}}
	vk.CmdSetScissor(c.commandBuffer().Handle, 0, 1, []vk.Rect2D{scissor})
}

// SetTarget switches the render pass the current command buffer is
// recording into. nil targets the swapchain image BeginFrame already
// opened a pass for; any other Framebuffer ends that pass (if open)
// and begins the target's own single-attachment-set pass instead.
func (c *Context) SetTarget(fb gpu.Framebuffer) {
	c.ensureFrame()
	cb := c.commandBuffer()

	if c.currentTarget != nil {
		c.currentTarget.pass.RenderpassEnd(cb)
		c.currentTarget = nil
	} else if cb.State == COMMAND_BUFFER_STATE_IN_RENDER_PASS && fb != nil {
		c.vctx.MainRenderPass.RenderpassEnd(cb)
	}

	if fb == nil {
		if cb.State != COMMAND_BUFFER_STATE_IN_RENDER_PASS {
			c.vctx.MainRenderPass.R, c.vctx.MainRenderPass.G = c.pendingClear[0], c.pendingClear[1]
			c.vctx.MainRenderPass.B, c.vctx.MainRenderPass.A = c.pendingClear[2], c.pendingClear[3]
			c.vctx.MainRenderPass.RenderpassBegin(cb, c.vctx.Swapchain.Framebuffers[c.vctx.ImageIndex].Handle)
		}
		return
	}

	target := fb.(*vulkanFramebuffer)
	target.pass.R, target.pass.G, target.pass.B, target.pass.A = c.pendingClear[0], c.pendingClear[1], c.pendingClear[2], c.pendingClear[3]
	target.pass.RenderpassBegin(cb, target.fb.Handle)
	c.currentTarget = target
}

func (c *Context) Clear(r, g, b, a float32) {
	c.pendingClear = [4]float32{r, g, b, a}
}

// UseBindings rewrites the shared descriptor set: b.Buffers fill
// binding slots sequentially from 0, b.Shader's AttachUniform calls
// fill their explicit bind points (overriding a same-numbered slot),
// and b.Textures fill the sampler slots starting at maxBufferBindings.
func (c *Context) UseBindings(b gpu.Bindings) {
	c.ensureFrame()

	slots := make(map[uint32]gpu.Buffer, len(b.Buffers))
	for i, buf := range b.Buffers {
		if i >= maxBufferBindings {
			break
		}
		if buf == nil {
			continue
		}
		slots[uint32(i)] = buf
	}
	if b.Shader != nil {
		for bindPoint, buf := range b.Shader.(*vulkanShader).attachments {
			slots[bindPoint] = buf
		}
	}

	writes := make([]vk.WriteDescriptorSet, 0, len(slots)+len(b.Textures))
	bufferInfos := make([]vk.DescriptorBufferInfo, 0, len(slots))
	for binding, buf := range slots {
		vb := buf.(*vulkanBuffer)
		bufferInfos = append(bufferInfos, vk.DescriptorBufferInfo{Buffer: vb.handle, Offset: 0, Range: vk.DeviceSize(vb.size)})
		last := len(bufferInfos) - 1
		writes = append(writes, vk.WriteDescriptorSet{
			SType: vk.StructureTypeWriteDescriptorSet,
			DstSet: c.descriptorSet,
			DstBinding: binding,
			DescriptorCount: 1,
			DescriptorType: vk.DescriptorTypeStorageBuffer,
			PBufferInfo: bufferInfos[last : last+1],
		})
	}

	imageInfos := make([]vk.DescriptorImageInfo, len(b.Textures))
	for i, tex := range b.Textures {
		if i >= maxTextureBindings {
			break
		}
		vt := tex.(*vulkanTexture)
		imageInfos[i] = vk.DescriptorImageInfo{
			Sampler: vt.sampler,
			ImageView: vt.image.View,
			ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
		}
		writes = append(writes, vk.WriteDescriptorSet{
			SType: vk.StructureTypeWriteDescriptorSet,
			DstSet: c.descriptorSet,
			DstBinding: uint32(maxBufferBindings + i),
			DescriptorCount: 1,
			DescriptorType: vk.DescriptorTypeCombinedImageSampler,
			PImageInfo: imageInfos[i : i+1],
		})
	}

	if len(writes) > 0 {
		vk.UpdateDescriptorSets(c.vctx.Device.LogicalDevice, uint32(len(writes)), writes, 0, nil)
	}
}

// UsePipeline binds the pipeline, rebinds the shared descriptor set,
// and binds whatever vertex/index buffers the PipelineDesc named so
// Draw/DrawInstanced only need to supply a start offset and count.
func (c *Context) UsePipeline(p gpu.Pipeline) {
	c.ensureFrame()
	vp := p.(*vulkanPipeline)
	c.currentPipeline = vp
	cb := c.commandBuffer()
	vp.pipeline.Bind(cb, vk.PipelineBindPointGraphics)
	vk.CmdBindDescriptorSets(cb.Handle, vk.PipelineBindPointGraphics, vp.pipeline.PipelineLayout, 0, 1, []vk.DescriptorSet{c.descriptorSet}, 0, nil)

	if len(vp.desc.VertexBuffers) > 0 {
		buffers := make([]vk.Buffer, len(vp.desc.VertexBuffers))
		offsets := make([]vk.DeviceSize, len(vp.desc.VertexBuffers))
		for i, b := range vp.desc.VertexBuffers {
			buffers[i] = b.(*vulkanBuffer).handle
		}
		vk.CmdBindVertexBuffers(cb.Handle, 0, uint32(len(buffers)), buffers, offsets)
	}
	if vp.desc.IndexBuffer != nil {
		indexType := vk.IndexTypeUint32
		if vp.desc.IndexType == gpu.IndexTypeUint16 {
			indexType = vk.IndexTypeUint16
		}
		vk.CmdBindIndexBuffer(cb.Handle, vp.desc.IndexBuffer.(*vulkanBuffer).handle, 0, indexType)
	}
}

// elementCount returns how many indices (or vertices, lacking an index
// buffer) the current pipeline's bound buffers describe.
func (c *Context) elementCount() uint32 {
	if c.currentPipeline == nil {
		return 1
	}
	desc := c.currentPipeline.desc
	if desc.IndexBuffer != nil {
		indexSize := uint64(4)
		if desc.IndexType == gpu.IndexTypeUint16 {
			indexSize = 2
		}
		return uint32(desc.IndexBuffer.Size / indexSize)
	}
	if len(desc.VertexBuffers) > 0 && desc.LayoutCount > 0 && desc.VertexLayouts[0].Stride > 0 {
		return uint32(desc.VertexBuffers[0].Size / uint64(desc.VertexLayouts[0].Stride))
	}
	return 1
}

func (c *Context) hasIndexBuffer() bool {
	return c.currentPipeline != nil && c.currentPipeline.desc.IndexBuffer != nil
}

func (c *Context) Draw(start uint32) {
	c.ensureFrame()
	if c.hasIndexBuffer() {
		vk.CmdDrawIndexed(c.commandBuffer().Handle, c.elementCount(), 1, start, 0, 0)
		return
	}
	vk.CmdDraw(c.commandBuffer().Handle, c.elementCount(), 1, start, 0)
}

func (c *Context) DrawInstanced(start uint32, instanceCount uint32) {
	c.ensureFrame()
	if c.hasIndexBuffer() {
		vk.CmdDrawIndexed(c.commandBuffer().Handle, c.elementCount(), instanceCount, start, 0, 0)
		return
	}
	vk.CmdDraw(c.commandBuffer().Handle, c.elementCount(), instanceCount, start, 0)
}

func (c *Context) DrawMultiIndirect(buf gpu.Buffer, offset uint64, count uint32, stride uint32) {
	c.ensureFrame()
	vb := buf.(*vulkanBuffer)
	vk.CmdDrawIndexedIndirect(c.commandBuffer().Handle, vb.handle, vk.DeviceSize(offset), count, stride)
}

func (c *Context) Dispatch(x, y, z uint32) {
	c.ensureFrame()
	vk.CmdDispatch(c.commandBuffer().Handle, x, y, z)
}

func (c *Context) MemoryBarrier(mask uint32) {
	c.ensureFrame()
	barrier := vk.MemoryBarrier{
		SType: vk.StructureTypeMemoryBarrier,
		SrcAccessMask: vk.AccessFlags(mask),
		DstAccessMask: vk.AccessFlags(mask),
	}
	vk.CmdPipelineBarrier(c.commandBuffer().Handle,
		vk.PipelineStageFlags(vk.PipelineStageAllCommandsBit), vk.PipelineStageFlags(vk.PipelineStageAllCommandsBit),
		0, 1, []vk.MemoryBarrier{barrier}, 0, nil, 0, nil)
}

// Present closes the frame: any off-screen target still bound is
// ended, the swapchain pass is ended, the command buffer submitted,
// and the image presented via VulkanRenderer.EndFrame.
func (c *Context) Present() {
	if !c.frameBegun {
		return
	}
	cb := c.commandBuffer()
	if c.currentTarget != nil {
		c.currentTarget.pass.RenderpassEnd(cb)
		c.currentTarget = nil
	}
	if err := c.renderer.EndFrame(float64(c.vctx.FrameDeltaTime)); err != nil {
		core.LogError("gpu: EndFrame failed: %s", err)
	}
	c.vctx.CurrentFrame = (c.vctx.CurrentFrame + 1) % uint32(c.vctx.Swapchain.MaxFramesInFlight)
	c.frameBegun = false
}

// ---- resource creation ----

func (c *Context) CreateBuffer(desc gpu.BufferDesc) (gpu.Buffer, error) {
	usage := vk.BufferUsageFlags(vk.BufferUsageTransferDstBit) | vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit)
	switch desc.Type {
	case gpu.BufferTypeVertex:
		usage |= vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit)
	case gpu.BufferTypeIndex:
		usage |= vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit)
	case gpu.BufferTypeUniform:
		usage |= vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit)
	case gpu.BufferTypeShaderStorage:
		usage |= vk.BufferUsageFlags(vk.BufferUsageStorageBufferBit)
	case gpu.BufferTypeDrawIndirect:
		usage |= vk.BufferUsageFlags(vk.BufferUsageIndirectBufferBit) | vk.BufferUsageFlags(vk.BufferUsageStorageBufferBit)
	}

	size := desc.Size
	if size == 0 {
		size = uint64(len(desc.Data))
	}

	createInfo := vk.BufferCreateInfo{
		SType: vk.StructureTypeBufferCreateInfo,
		Size: vk.DeviceSize(size),
		Usage: usage,
		SharingMode: vk.SharingModeExclusive,
	}

	var handle vk.Buffer
	if res := vk.CreateBuffer(c.vctx.Device.LogicalDevice, &createInfo, c.vctx.Allocator, &handle); !VulkanResultIsSuccess(res) {
		return nil, fmt.Errorf("failed to create buffer: %s", VulkanResultString(res, true))
	}

	var requirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(c.vctx.Device.LogicalDevice, handle, &requirements)
	requirements.Deref()

	propertyFlags := uint32(vk.MemoryPropertyHostVisibleBit) | uint32(vk.MemoryPropertyHostCoherentBit)
	memoryIndex := c.vctx.FindMemoryIndex(requirements.MemoryTypeBits, propertyFlags)
	if memoryIndex == -1 {
		return nil, fmt.Errorf("no suitable memory type for buffer")
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType: vk.StructureTypeMemoryAllocateInfo,
		AllocationSize: requirements.Size,
		MemoryTypeIndex: uint32(memoryIndex),
	}
	var memory vk.DeviceMemory
	if res := vk.AllocateMemory(c.vctx.Device.LogicalDevice, &allocateInfo, c.vctx.Allocator, &memory); !VulkanResultIsSuccess(res) {
		return nil, fmt.Errorf("failed to allocate buffer memory: %s", VulkanResultString(res, true))
	}
	if res := vk.BindBufferMemory(c.vctx.Device.LogicalDevice, handle, memory, 0); !VulkanResultIsSuccess(res) {
		return nil, fmt.Errorf("failed to bind buffer memory: %s", VulkanResultString(res, true))
	}

	buf := &vulkanBuffer{ctx: c.vctx, handle: handle, memory: memory, size: size, typ: desc.Type}
	if len(desc.Data) > 0 {
		buf.UploadData(0, desc.Data)
	}
	return buf, nil
}

func vkFormat(f gpu.Format) vk.Format {
	switch f {
	case gpu.FormatR8:
		return vk.FormatR8Unorm
	case gpu.FormatR16:
		return vk.FormatR16Unorm
	case gpu.FormatR16F:
		return vk.FormatR16Sfloat
	case gpu.FormatR32F:
		return vk.FormatR32Sfloat
	case gpu.FormatRG8:
		return vk.FormatR8g8Unorm
	case gpu.FormatRG16:
		return vk.FormatR16g16Unorm
	case gpu.FormatRG16F:
		return vk.FormatR16g16Sfloat
	case gpu.FormatRG32F:
		return vk.FormatR32g32Sfloat
	case gpu.FormatRGBA8:
		return vk.FormatR8g8b8a8Unorm
	case gpu.FormatRGBA16:
		return vk.FormatR16g16b16a16Unorm
	case gpu.FormatRGBA16F:
		return vk.FormatR16g16b16a16Sfloat
	case gpu.FormatRGBA32F:
		return vk.FormatR32g32b32a32Sfloat
	case gpu.FormatDepth16:
		return vk.FormatD16Unorm
	case gpu.FormatDepth24:
		return vk.FormatX8D24UnormPack32
	case gpu.FormatDepth32F:
		return vk.FormatD32Sfloat
	case gpu.FormatStencil8:
		return vk.FormatS8Uint
	case gpu.FormatDepthStencil24_8:
		return vk.FormatD24UnormS8Uint
	default:
		return vk.FormatR8g8b8a8Unorm
	}
}

// vkFilter reduces the six min/mag combinations of gpu.Filter to the
// plain VkFilter/VkSamplerMipmapMode pair Vulkan samplers take; each
// named combination only ever needs a min-side filter/mip choice here
// since CreateTexture applies FilterMin to min and FilterMag to mag.
func vkFilter(f gpu.Filter) (filter vk.Filter, mip vk.SamplerMipmapMode) {
	switch f {
	case gpu.FilterMinMagNearest, gpu.FilterMinNearestMagLinear:
		return vk.FilterNearest, vk.SamplerMipmapModeNearest
	case gpu.FilterMinLinearMagNearest, gpu.FilterMinTrilinearMagNearest:
		return vk.FilterLinear, vk.SamplerMipmapModeNearest
	default:
		return vk.FilterLinear, vk.SamplerMipmapModeLinear
	}
}

func vkWrap(w gpu.Wrap) vk.SamplerAddressMode {
	switch w {
	case gpu.WrapMirror:
		return vk.SamplerAddressModeMirroredRepeat
	case gpu.WrapClamp:
		return vk.SamplerAddressModeClampToEdge
	case gpu.WrapBorder:
		return vk.SamplerAddressModeClampToBorder
	default:
		return vk.SamplerAddressModeRepeat
	}
}

func (c *Context) createSampler(desc gpu.TextureDesc) (vk.Sampler, error) {
	minF, mip := vkFilter(desc.FilterMin)
	magF, _ := vkFilter(desc.FilterMag)
	addr := vkWrap(desc.Wrap)

	info := vk.SamplerCreateInfo{
		SType: vk.StructureTypeSamplerCreateInfo,
		MinFilter: minF,
		MagFilter: magF,
		MipmapMode: mip,
		AddressModeU: addr,
		AddressModeV: addr,
		AddressModeW: addr,
		BorderColor: vk.BorderColorIntOpaqueBlack,
		MaxLod: 1,
	}
	if desc.CompareShadow {
		info.CompareEnable = vk.True
		info.CompareOp = vk.CompareOpLessOrEqual
	}
	var sampler vk.Sampler
	if res := vk.CreateSampler(c.vctx.Device.LogicalDevice, &info, c.vctx.Allocator, &sampler); !VulkanResultIsSuccess(res) {
		return nil, fmt.Errorf("failed to create sampler: %s", VulkanResultString(res, true))
	}
	return sampler, nil
}

func isDepthFormat(f gpu.Format) bool {
	switch f {
	case gpu.FormatDepth16, gpu.FormatDepth24, gpu.FormatDepth32F, gpu.FormatStencil8, gpu.FormatDepthStencil24_8:
		return true
	default:
		return false
	}
}

func (c *Context) CreateTexture(desc gpu.TextureDesc) (gpu.Texture, error) {
	usage := vk.ImageUsageFlags(vk.ImageUsageSampledBit) | vk.ImageUsageFlags(vk.ImageUsageTransferDstBit)
	aspect := vk.ImageAspectFlags(vk.ImageAspectColorBit)
	if isDepthFormat(desc.Format) {
		usage |= vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit)
		aspect = vk.ImageAspectFlags(vk.ImageAspectDepthBit)
	} else {
		usage |= vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit)
	}

	image, err := ImageCreate(c.vctx, vk.ImageType2d, desc.Width, desc.Height, vkFormat(desc.Format),
		vk.ImageTilingOptimal, usage, vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit), true, aspect)
	if err != nil {
		return nil, err
	}

	sampler, err := c.createSampler(desc)
	if err != nil {
		return nil, err
	}

	tex := &vulkanTexture{ctx: c.vctx, image: image, sampler: sampler, desc: desc}
	if desc.Bindless {
		c.bindlessCounter++
		tex.bindlessID = c.bindlessCounter
	}
	if len(desc.Pixels) > 0 {
		if err := tex.upload(c, desc.Pixels); err != nil {
			return nil, err
		}
	}
	return tex, nil
}

func (c *Context) CreateCubemap(desc gpu.CubemapDesc) (gpu.Cubemap, error) {
	usage := vk.ImageUsageFlags(vk.ImageUsageSampledBit) | vk.ImageUsageFlags(vk.ImageUsageTransferDstBit)
	image, err := ImageCreate(c.vctx, vk.ImageType2d, desc.Size, desc.Size, vkFormat(desc.Format),
		vk.ImageTilingOptimal, usage, vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit), true, vk.ImageAspectFlags(vk.ImageAspectColorBit))
	if err != nil {
		return nil, err
	}
	sampler, err := c.createSampler(gpu.TextureDesc{FilterMin: desc.FilterMin, FilterMag: desc.FilterMag, Wrap: desc.Wrap})
	if err != nil {
		return nil, err
	}
	return &vulkanCubemap{ctx: c.vctx, image: image, sampler: sampler, desc: desc}, nil
}

func (c *Context) CreateShader(desc gpu.ShaderDesc) (gpu.Shader, error) {
	sh := &vulkanShader{ctx: c.vctx, attachments: make(map[uint32]gpu.Buffer)}
	if len(desc.Vertex) > 0 {
		stage, err := CreateShaderStage(c.vctx, []byte(desc.Vertex), vk.ShaderStageVertexBit)
		if err != nil {
			return nil, err
		}
		sh.stages = append(sh.stages, stage)
	}
	if len(desc.Pixel) > 0 {
		stage, err := CreateShaderStage(c.vctx, []byte(desc.Pixel), vk.ShaderStageFragmentBit)
		if err != nil {
			return nil, err
		}
		sh.stages = append(sh.stages, stage)
	}
	if len(desc.Compute) > 0 {
		stage, err := CreateShaderStage(c.vctx, []byte(desc.Compute), vk.ShaderStageComputeBit)
		if err != nil {
			return nil, err
		}
		sh.stages = append(sh.stages, stage)
	}
	return sh, nil
}

func drawModeToTopology(m gpu.DrawMode) vk.PrimitiveTopology {
	switch m {
	case gpu.DrawModeTriangleStrip:
		return vk.PrimitiveTopologyTriangleStrip
	case gpu.DrawModeLine:
		return vk.PrimitiveTopologyLineList
	case gpu.DrawModeLineStrip:
		return vk.PrimitiveTopologyLineStrip
	case gpu.DrawModePoint:
		return vk.PrimitiveTopologyPointList
	default:
		return vk.PrimitiveTopologyTriangleList
	}
}

func (c *Context) buildPipeline(desc gpu.PipelineDesc) (*VulkanPipeline, error) {
	sh := desc.Shader.(*vulkanShader)
	stages := make([]vk.PipelineShaderStageCreateInfo, len(sh.stages))
	for i, s := range sh.stages {
		stages[i] = s.StageCreateInfo
	}

	var stride uint32
	attrs := []vk.VertexInputAttributeDescription{}
	if desc.LayoutCount > 0 {
		layout := desc.VertexLayouts[0]
		stride = layout.Stride
		for i, a := range layout.Attributes {
			format := vk.FormatR32Sfloat
			switch a.Count {
			case 2:
				format = vk.FormatR32g32Sfloat
			case 3:
				format = vk.FormatR32g32b32Sfloat
			case 4:
				format = vk.FormatR32g32b32a32Sfloat
			}
			attrs = append(attrs, vk.VertexInputAttributeDescription{
				Location: uint32(i), Binding: 0, Format: format, Offset: a.Offset,
			})
		}
	}

	viewport := vk.Viewport{X: 0, Y: 0, Width: float32(c.vctx.FramebufferWidth), Height: float32(c.vctx.FramebufferHeight), MinDepth: 0, MaxDepth: 1}
	scissor := vk.Rect2D{Extent: vk.Extent2D{Width: c.vctx.FramebufferWidth, Height: c.vctx.FramebufferHeight}}

	pass := c.vctx.MainRenderPass
	if c.currentTarget != nil {
		pass = c.currentTarget.pass
	}

	return NewGraphicsPipeline(c.vctx, pass, stride, attrs,
		[]vk.DescriptorSetLayout{c.descriptorSetLayout}, stages, viewport, scissor,
		drawModeToTopology(desc.DrawMode), c.stateMask.Has(gpu.StateCull), c.stateMask.Has(gpu.StateDepth))
}

func (c *Context) CreatePipeline(desc gpu.PipelineDesc) (gpu.Pipeline, error) {
	vp, err := c.buildPipeline(desc)
	if err != nil {
		return nil, err
	}
	return &vulkanPipeline{ctx: c, desc: desc, pipeline: vp}, nil
}

func (c *Context) CreateFramebuffer(desc gpu.FramebufferDesc) (gpu.Framebuffer, error) {
	colorTextures := make([]gpu.Texture, len(desc.ColorFormats))
	views := make([]vk.ImageView, 0, len(desc.ColorFormats)+1)
	for i, f := range desc.ColorFormats {
		tex, err := c.CreateTexture(gpu.TextureDesc{Kind: gpu.TextureKind2D, Format: f, Width: desc.Width, Height: desc.Height})
		if err != nil {
			return nil, err
		}
		colorTextures[i] = tex
		views = append(views, tex.(*vulkanTexture).image.View)
	}

	var depthTex gpu.Texture
	depth := float32(0)
	if desc.HasDepth {
		tex, err := c.CreateTexture(gpu.TextureDesc{Kind: gpu.TextureKindDepthTarget, Format: desc.DepthFormat, Width: desc.Width, Height: desc.Height})
		if err != nil {
			return nil, err
		}
		depthTex = tex
		views = append(views, tex.(*vulkanTexture).image.View)
		depth = 1
	}

	pass, err := RenderpassCreate(c.vctx, 0, 0, float32(desc.Width), float32(desc.Height), 0, 0, 0, 1, depth, 0, false, false)
	if err != nil {
		return nil, err
	}
	fb, err := FramebufferCreate(c.vctx, pass, desc.Width, desc.Height, uint32(len(views)), views)
	if err != nil {
		return nil, err
	}

	return &vulkanFramebuffer{ctx: c.vctx, fb: fb, pass: pass, desc: desc, colorTextures: colorTextures, depthTexture: depthTex}, nil
}

// ---- gpu.Buffer ----

type vulkanBuffer struct {
	ctx *VulkanContext
	handle vk.Buffer
	memory vk.DeviceMemory
	size uint64
	typ gpu.BufferType
	bindPoint uint32
}

func (b *vulkanBuffer) Type() gpu.BufferType { return b.typ }
func (b *vulkanBuffer) Size() uint64 { return b.size }

func (b *vulkanBuffer) UploadData(offset uint64, data []byte) {
	if len(data) == 0 {
		return
	}
	var mapped unsafe.Pointer
	if res := vk.MapMemory(b.ctx.Device.LogicalDevice, b.memory, vk.DeviceSize(offset), vk.DeviceSize(len(data)), 0, &mapped); !VulkanResultIsSuccess(res) {
		core.LogError("gpu: failed to map buffer memory: %s", VulkanResultString(res, true))
		return
	}
	dst := unsafe.Slice((*byte)(mapped), len(data))
	copy(dst, data)
	vk.UnmapMemory(b.ctx.Device.LogicalDevice, b.memory)
}

func (b *vulkanBuffer) BindToPoint(index uint32) { b.bindPoint = index }

func (b *vulkanBuffer) Destroy() {
	if b.handle != nil {
		vk.DestroyBuffer(b.ctx.Device.LogicalDevice, b.handle, b.ctx.Allocator)
		b.handle = nil
	}
	if b.memory != nil {
		vk.FreeMemory(b.ctx.Device.LogicalDevice, b.memory, b.ctx.Allocator)
		b.memory = nil
	}
}

// ---- gpu.Texture ----

type vulkanTexture struct {
	ctx *VulkanContext
	image *VulkanImage
	sampler vk.Sampler
	desc gpu.TextureDesc
	bindlessID uint64
}

func (t *vulkanTexture) Desc() gpu.TextureDesc { return t.desc }
func (t *vulkanTexture) BindlessID() uint64 { return t.bindlessID }

func (t *vulkanTexture) upload(c *Context, pixels []byte) error {
	staging, err := c.CreateBuffer(gpu.BufferDesc{Type: gpu.BufferTypeVertex, Size: uint64(len(pixels)), Data: pixels})
	if err != nil {
		return err
	}
	sb := staging.(*vulkanBuffer)
	defer sb.Destroy()

	cb, err := AllocateAndBeginSingleUse(c.vctx, c.vctx.Device.GraphicsCommandPool)
	if err != nil {
		return err
	}

	region := vk.BufferImageCopy{
		BufferOffset: 0,
		ImageSubresource: vk.ImageSubresourceLayers{AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit), LayerCount: 1},
		ImageExtent: vk.Extent3D{Width: t.desc.Width, Height: t.desc.Height, Depth: 1},
	}
	vk.CmdCopyBufferToImage(cb.Handle, sb.handle, t.image.Handle, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{region})

	return cb.EndSingleUse(c.vctx, c.vctx.Device.GraphicsCommandPool, c.vctx.Device.GraphicsQueue)
}

func (t *vulkanTexture) Destroy() {
	if t.sampler != nil {
		vk.DestroySampler(t.ctx.Device.LogicalDevice, t.sampler, t.ctx.Allocator)
		t.sampler = nil
	}
	t.image.ImageDestroy(t.ctx)
}

// ---- gpu.Cubemap ----

type vulkanCubemap struct {
	ctx *VulkanContext
	image *VulkanImage
	sampler vk.Sampler
	desc gpu.CubemapDesc
	bindlessID uint64
}

func (cm *vulkanCubemap) Desc() gpu.CubemapDesc { return cm.desc }
func (cm *vulkanCubemap) BindlessID() uint64 { return cm.bindlessID }
func (cm *vulkanCubemap) Destroy() {
	if cm.sampler != nil {
		vk.DestroySampler(cm.ctx.Device.LogicalDevice, cm.sampler, cm.ctx.Allocator)
		cm.sampler = nil
	}
	cm.image.ImageDestroy(cm.ctx)
}

// ---- gpu.Shader ----

type vulkanShader struct {
	ctx *VulkanContext
	stages []*VulkanShaderStage
	attachments map[uint32]gpu.Buffer
}

func (s *vulkanShader) Query() gpu.QueryResult {
	uniforms := make([]gpu.UniformVar, 0, len(s.attachments))
	for bindPoint := range s.attachments {
		uniforms = append(uniforms, gpu.UniformVar{Location: int32(bindPoint)})
	}
	return gpu.QueryResult{Uniforms: uniforms}
}

func (s *vulkanShader) AttachUniform(name string, buf gpu.Buffer, bindPoint uint32) {
	s.attachments[bindPoint] = buf
}

func (s *vulkanShader) Destroy() {
	for _, stage := range s.stages {
		stage.Destroy(s.ctx)
	}
	s.stages = nil
}

// ---- gpu.Pipeline ----

type vulkanPipeline struct {
	ctx *Context
	desc gpu.PipelineDesc
	pipeline *VulkanPipeline
}

func (p *vulkanPipeline) Desc() gpu.PipelineDesc { return p.desc }

func (p *vulkanPipeline) Update(desc gpu.PipelineDesc) {
	p.pipeline.Destroy(p.ctx.vctx)
	vp, err := p.ctx.buildPipeline(desc)
	if err != nil {
		core.LogError("gpu: pipeline update failed: %s", err)
		return
	}
	p.desc = desc
	p.pipeline = vp
}

func (p *vulkanPipeline) Destroy() {
	p.pipeline.Destroy(p.ctx.vctx)
}

// ---- gpu.Framebuffer ----

type vulkanFramebuffer struct {
	ctx *VulkanContext
	fb *VulkanFramebuffer
	pass *VulkanRenderPass
	desc gpu.FramebufferDesc
	colorTextures []gpu.Texture
	depthTexture gpu.Texture
}

func (f *vulkanFramebuffer) Desc() gpu.FramebufferDesc { return f.desc }

func (f *vulkanFramebuffer) ColorAttachment(i int) gpu.Texture {
	if i < 0 || i >= len(f.colorTextures) {
		return nil
	}
	return f.colorTextures[i]
}

func (f *vulkanFramebuffer) DepthAttachment() gpu.Texture { return f.depthTexture }

// Resize records the new width and height in the framebuffer's
// descriptor and logs a warning. The attachments, their image views,
// the render pass and the VkFramebuffer are not rebuilt and keep the
// size they were created with.
func (f *vulkanFramebuffer) Resize(width, height uint32) {
	f.desc.Width, f.desc.Height = width, height
	core.LogWarn("gpu: framebuffer resize requested (%dx%d) but rebuild is not implemented; recreate the framebuffer instead", width, height)
}

func (f *vulkanFramebuffer) Destroy() {
	for _, t := range f.colorTextures {
		t.Destroy()
	}
	if f.depthTexture != nil {
		f.depthTexture.Destroy()
	}
	f.fb.Destroy(f.ctx)
	f.pass.RenderpassDestroy(f.ctx)
}
