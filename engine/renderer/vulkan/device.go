package vulkan

import (
	"github.com/cockroachdb/errors"
	"github.com/droune2001/vulkan-sub000/engine/core"
	vk "github.com/goki/vulkan"
)

type VulkanDevice struct {
	PhysicalDevice   vk.PhysicalDevice
	LogicalDevice    vk.Device
	SwapchainSupport VulkanSwapchainSupportInfo
	QueueFamilies    QueueFamilyIndices

	GraphicsQueue vk.Queue
	ComputeQueue  vk.Queue
	TransferQueue vk.Queue
	PresentQueue  vk.Queue

	GraphicsCommandPool vk.CommandPool
	ComputeCommandPool  vk.CommandPool
	// Short-lived command buffers for staging copies and layout transitions.
	TransientCommandPool vk.CommandPool

	Properties vk.PhysicalDeviceProperties
	Limits     vk.PhysicalDeviceLimits
	Features   vk.PhysicalDeviceFeatures
	Memory     vk.PhysicalDeviceMemoryProperties
	// Property flags per memory type index.
	MemoryTypes []vk.MemoryPropertyFlags

	DepthFormat     vk.Format
	DepthHasStencil bool

	SamplerAnisotropy bool
}

type VulkanSwapchainSupportInfo struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

var requiredDeviceExtensions = []string{vk.KhrSwapchainExtensionName}

const portabilitySubsetExtension = "VK_KHR_portability_subset"

// FormatSupportsOptimal reports whether the format's optimal tiling features
// contain every bit of features.
func (d *VulkanDevice) FormatSupportsOptimal(format vk.Format, features vk.FormatFeatureFlags) bool {
	return d.optimalFeatures(format)&features == features
}

func (d *VulkanDevice) optimalFeatures(format vk.Format) vk.FormatFeatureFlags {
	var props vk.FormatProperties
	vk.GetPhysicalDeviceFormatProperties(d.PhysicalDevice, format, &props)
	props.Deref()
	return props.OptimalTilingFeatures
}

// MinUniformAlignment is minUniformBufferOffsetAlignment.
func (d *VulkanDevice) MinUniformAlignment() uint64 {
	return uint64(d.Limits.MinUniformBufferOffsetAlignment)
}

func (d *VulkanDevice) NonCoherentAtomSize() uint64 {
	return uint64(d.Limits.NonCoherentAtomSize)
}

func DeviceCreate(context *VulkanContext) error {
	if err := SelectPhysicalDevice(context); err != nil {
		return err
	}
	device := context.Device

	core.LogInfo("Creating logical device...")

	// Do not create additional queues for shared indices.
	families := device.QueueFamilies.Unique()
	queuePriority := []float32{1.0}
	queueCreateInfos := make([]vk.DeviceQueueCreateInfo, len(families))
	for i, family := range families {
		queueCreateInfos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: queuePriority,
		}
	}

	deviceFeatures := vk.PhysicalDeviceFeatures{}
	if device.SamplerAnisotropy {
		deviceFeatures.SamplerAnisotropy = vk.True
	}

	available, err := deviceExtensions(device.PhysicalDevice)
	if err != nil {
		return err
	}
	extensionNames := append([]string{}, requiredDeviceExtensions...)
	if containsName(available, portabilitySubsetExtension) {
		core.LogInfo("Adding required extension '%s'.", portabilitySubsetExtension)
		extensionNames = append(extensionNames, portabilitySubsetExtension)
	}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueCreateInfos)),
		PQueueCreateInfos:       queueCreateInfos,
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{deviceFeatures},
		EnabledExtensionCount:   uint32(len(extensionNames)),
		PpEnabledExtensionNames: VulkanSafeStrings(extensionNames),
	}

	var logical vk.Device
	if err := ResultError(vk.CreateDevice(device.PhysicalDevice, &deviceCreateInfo, context.Allocator, &logical), "vkCreateDevice"); err != nil {
		return err
	}
	device.LogicalDevice = logical
	core.LogInfo("Logical device created.")

	q := device.QueueFamilies
	vk.GetDeviceQueue(logical, q.Graphics, 0, &device.GraphicsQueue)
	vk.GetDeviceQueue(logical, q.Compute, 0, &device.ComputeQueue)
	vk.GetDeviceQueue(logical, q.Transfer, 0, &device.TransferQueue)
	vk.GetDeviceQueue(logical, q.Present, 0, &device.PresentQueue)
	context.queueLocks = NewQueueLocks(families...)
	core.LogInfo("Queues obtained.")

	resettable := vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit)
	if device.GraphicsCommandPool, err = createCommandPool(context, q.Graphics, resettable); err != nil {
		return err
	}
	if device.ComputeCommandPool, err = createCommandPool(context, q.Compute, resettable); err != nil {
		return err
	}
	transient := resettable | vk.CommandPoolCreateFlags(vk.CommandPoolCreateTransientBit)
	if device.TransientCommandPool, err = createCommandPool(context, q.Graphics, transient); err != nil {
		return err
	}
	core.LogInfo("Command pools created.")

	return nil
}

func createCommandPool(context *VulkanContext, family uint32, flags vk.CommandPoolCreateFlags) (vk.CommandPool, error) {
	poolCreateInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: family,
		Flags:            flags,
	}
	var pool vk.CommandPool
	err := ResultError(vk.CreateCommandPool(context.Device.LogicalDevice, &poolCreateInfo, context.Allocator, &pool), "vkCreateCommandPool")
	return pool, err
}

func DeviceDestroy(context *VulkanContext) {
	device := context.Device
	if device == nil || device.LogicalDevice == nil {
		return
	}
	// Unset queues
	device.GraphicsQueue = nil
	device.ComputeQueue = nil
	device.TransferQueue = nil
	device.PresentQueue = nil

	core.LogInfo("Destroying command pools...")
	for _, pool := range []vk.CommandPool{device.TransientCommandPool, device.ComputeCommandPool, device.GraphicsCommandPool} {
		if pool != vk.NullCommandPool {
			vk.DestroyCommandPool(device.LogicalDevice, pool, context.Allocator)
		}
	}
	device.TransientCommandPool = vk.NullCommandPool
	device.ComputeCommandPool = vk.NullCommandPool
	device.GraphicsCommandPool = vk.NullCommandPool

	core.LogInfo("Destroying logical device...")
	vk.DestroyDevice(device.LogicalDevice, context.Allocator)
	device.LogicalDevice = nil

	// Physical devices are not destroyed.
	device.PhysicalDevice = nil
	device.SwapchainSupport = VulkanSwapchainSupportInfo{}
}

// DeviceQuerySwapchainSupport reads the surface capabilities, formats and
// present modes of a physical device.
func DeviceQuerySwapchainSupport(physicalDevice vk.PhysicalDevice, surface vk.Surface) (VulkanSwapchainSupportInfo, error) {
	var info VulkanSwapchainSupportInfo
	if err := ResultError(vk.GetPhysicalDeviceSurfaceCapabilities(physicalDevice, surface, &info.Capabilities), "vkGetPhysicalDeviceSurfaceCapabilitiesKHR"); err != nil {
		return info, err
	}
	info.Capabilities.Deref()
	info.Capabilities.CurrentExtent.Deref()
	info.Capabilities.MinImageExtent.Deref()
	info.Capabilities.MaxImageExtent.Deref()

	var formatCount uint32
	if err := ResultError(vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &formatCount, nil), "vkGetPhysicalDeviceSurfaceFormatsKHR"); err != nil {
		return info, err
	}
	if formatCount != 0 {
		info.Formats = make([]vk.SurfaceFormat, formatCount)
		if err := ResultError(vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &formatCount, info.Formats), "vkGetPhysicalDeviceSurfaceFormatsKHR"); err != nil {
			return info, err
		}
		for i := range info.Formats {
			info.Formats[i].Deref()
		}
	}

	var modeCount uint32
	if err := ResultError(vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &modeCount, nil), "vkGetPhysicalDeviceSurfacePresentModesKHR"); err != nil {
		return info, err
	}
	if modeCount != 0 {
		info.PresentModes = make([]vk.PresentMode, modeCount)
		if err := ResultError(vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &modeCount, info.PresentModes), "vkGetPhysicalDeviceSurfacePresentModesKHR"); err != nil {
			return info, err
		}
	}
	return info, nil
}

// DeviceDetectDepthFormat picks the depth attachment format.
func DeviceDetectDepthFormat(device *VulkanDevice) bool {
	format, stencil, ok := SelectDepthFormat(device.optimalFeatures)
	if !ok {
		return false
	}
	device.DepthFormat = format
	device.DepthHasStencil = stencil
	return true
}

func deviceExtensions(physicalDevice vk.PhysicalDevice) ([]string, error) {
	var count uint32
	if err := ResultError(vk.EnumerateDeviceExtensionProperties(physicalDevice, "", &count, nil), "vkEnumerateDeviceExtensionProperties"); err != nil {
		return nil, err
	}
	props := make([]vk.ExtensionProperties, count)
	if count > 0 {
		if err := ResultError(vk.EnumerateDeviceExtensionProperties(physicalDevice, "", &count, props), "vkEnumerateDeviceExtensionProperties"); err != nil {
			return nil, err
		}
	}
	names := make([]string, 0, count)
	for i := range props[:count] {
		props[i].Deref()
		names = append(names, vulkanString(props[i].ExtensionName[:]))
	}
	return names, nil
}

func queueFamilyCaps(physicalDevice vk.PhysicalDevice, surface vk.Surface) ([]QueueFamilyCaps, error) {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(physicalDevice, &count, nil)
	props := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(physicalDevice, &count, props)

	caps := make([]QueueFamilyCaps, count)
	for i := range props[:count] {
		props[i].Deref()
		var supportsPresent vk.Bool32
		if err := ResultError(vk.GetPhysicalDeviceSurfaceSupport(physicalDevice, uint32(i), surface, &supportsPresent), "vkGetPhysicalDeviceSurfaceSupportKHR"); err != nil {
			return nil, err
		}
		caps[i] = QueueFamilyCaps{
			Flags:          props[i].QueueFlags,
			QueueCount:     props[i].QueueCount,
			PresentSupport: supportsPresent == vk.True,
		}
	}
	return caps, nil
}

// SelectPhysicalDevice takes the first device with a graphics family, a
// family that can present to the surface, the swapchain extension and at
// least one surface format and present mode.
func SelectPhysicalDevice(context *VulkanContext) error {
	var physicalDeviceCount uint32
	if err := ResultError(vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, nil), "vkEnumeratePhysicalDevices"); err != nil {
		return err
	}
	if physicalDeviceCount == 0 {
		return core.ErrNoPhysicalDevice
	}
	physicalDevices := make([]vk.PhysicalDevice, physicalDeviceCount)
	if err := ResultError(vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, physicalDevices), "vkEnumeratePhysicalDevices"); err != nil {
		return err
	}

	var lastErr error = core.ErrNoPhysicalDevice
	for _, pd := range physicalDevices {
		properties := vk.PhysicalDeviceProperties{}
		vk.GetPhysicalDeviceProperties(pd, &properties)
		properties.Deref()
		properties.Limits.Deref()
		name := vulkanString(properties.DeviceName[:])

		candidate, err := evaluatePhysicalDevice(pd, context.Surface)
		if err != nil {
			core.LogInfo("Skipping device '%s': %s", name, err)
			lastErr = err
			continue
		}

		features := vk.PhysicalDeviceFeatures{}
		vk.GetPhysicalDeviceFeatures(pd, &features)
		features.Deref()

		memory := vk.PhysicalDeviceMemoryProperties{}
		vk.GetPhysicalDeviceMemoryProperties(pd, &memory)
		memory.Deref()

		candidate.Properties = properties
		candidate.Limits = properties.Limits
		candidate.Features = features
		candidate.Memory = memory
		candidate.MemoryTypes = memoryTypeFlags(memory)
		candidate.SamplerAnisotropy = features.SamplerAnisotropy == vk.True

		logDevice(name, properties, memory)
		context.Device = candidate
		return nil
	}
	return errors.Wrap(lastErr, "no physical device meets the requirements")
}

func evaluatePhysicalDevice(pd vk.PhysicalDevice, surface vk.Surface) (*VulkanDevice, error) {
	caps, err := queueFamilyCaps(pd, surface)
	if err != nil {
		return nil, err
	}
	families, err := SelectQueueFamilies(caps)
	if err != nil {
		return nil, err
	}

	available, err := deviceExtensions(pd)
	if err != nil {
		return nil, err
	}
	for _, ext := range requiredDeviceExtensions {
		if !containsName(available, ext) {
			return nil, errors.Newf("required extension not found: '%s'", ext)
		}
	}

	support, err := DeviceQuerySwapchainSupport(pd, surface)
	if err != nil {
		return nil, err
	}
	if len(support.Formats) == 0 || len(support.PresentModes) == 0 {
		return nil, errors.New("required swapchain support not present")
	}

	core.LogDebug("Graphics Family Index: %d", families.Graphics)
	core.LogDebug("Present Family Index:  %d", families.Present)
	core.LogDebug("Transfer Family Index: %d", families.Transfer)
	core.LogDebug("Compute Family Index:  %d", families.Compute)

	return &VulkanDevice{
		PhysicalDevice:   pd,
		QueueFamilies:    families,
		SwapchainSupport: support,
	}, nil
}

func logDevice(name string, properties vk.PhysicalDeviceProperties, memory vk.PhysicalDeviceMemoryProperties) {
	core.LogInfo("Selected device: '%s'.", name)
	switch properties.DeviceType {
	case vk.PhysicalDeviceTypeIntegratedGpu:
		core.LogInfo("GPU type is Integrated.")
	case vk.PhysicalDeviceTypeDiscreteGpu:
		core.LogInfo("GPU type is Discrete.")
	case vk.PhysicalDeviceTypeVirtualGpu:
		core.LogInfo("GPU type is Virtual.")
	case vk.PhysicalDeviceTypeCpu:
		core.LogInfo("GPU type is CPU.")
	default:
		core.LogInfo("GPU type is Unknown.")
	}

	core.LogInfo(
		"GPU Driver version: %d.%d.%d",
		vk.Version.Major(vk.Version(properties.DriverVersion)),
		vk.Version.Minor(vk.Version(properties.DriverVersion)),
		vk.Version.Patch(vk.Version(properties.DriverVersion)),
	)
	core.LogInfo(
		"Vulkan API version: %d.%d.%d",
		vk.Version.Major(vk.Version(properties.ApiVersion)),
		vk.Version.Minor(vk.Version(properties.ApiVersion)),
		vk.Version.Patch(vk.Version(properties.ApiVersion)),
	)

	for j := uint32(0); j < memory.MemoryHeapCount; j++ {
		memory.MemoryHeaps[j].Deref()
		sizeGib := float64(memory.MemoryHeaps[j].Size) / 1024.0 / 1024.0 / 1024.0
		if memory.MemoryHeaps[j].Flags&vk.MemoryHeapFlags(vk.MemoryHeapDeviceLocalBit) != 0 {
			core.LogInfo("Local GPU memory: %.2f GiB", sizeGib)
		} else {
			core.LogInfo("Shared System memory: %.2f GiB", sizeGib)
		}
	}
}
