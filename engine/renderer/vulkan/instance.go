package vulkan

import (
	"runtime"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/droune2001/vulkan-sub000/engine/core"
	vk "github.com/goki/vulkan"
)

const validationLayerName = "VK_LAYER_KHRONOS_validation"

// InstanceExtensions lists the instance extensions to enable on top of what
// the window system needs.
func InstanceExtensions(platform []string, validation bool, goos string) []string {
	extensions := []string{vk.KhrSurfaceExtensionName}
	for _, e := range platform {
		if e != vk.KhrSurfaceExtensionName {
			extensions = append(extensions, e)
		}
	}
	if goos == "darwin" {
		extensions = append(extensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
	}
	if validation {
		extensions = append(extensions, vk.ExtDebugReportExtensionName)
	}
	return extensions
}

// InstanceCreate loads the Vulkan entry points through the platform's proc
// address and creates the instance, with the validation layer and the debug
// report sink when asked for.
func InstanceCreate(context *VulkanContext, provider SurfaceProvider, appName string, validation bool) error {
	procAddr := provider.VulkanProcAddr()
	if procAddr == nil {
		return errors.Wrap(core.ErrInitialization, "GetInstanceProcAddress is nil")
	}
	vk.SetGetInstanceProcAddr(procAddr)
	if err := vk.Init(); err != nil {
		return errors.Wrap(err, "failed to initialize vk")
	}

	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(appName),
		PEngineName:        VulkanSafeString("No Engine"),
	}

	extensions := InstanceExtensions(provider.RequiredInstanceExtensions(), validation, runtime.GOOS)
	core.LogDebug("Required extensions: %v", extensions)

	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: VulkanSafeStrings(extensions),
	}
	if runtime.GOOS == "darwin" {
		// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
		createInfo.Flags |= 1
	}

	var layers []string
	if validation {
		core.LogInfo("Validation layers enabled. Enumerating...")
		available, err := instanceLayers()
		if err != nil {
			return err
		}
		if !containsName(available, validationLayerName) {
			return errors.Wrapf(core.ErrInitialization, "required validation layer is missing: %s", validationLayerName)
		}
		layers = []string{validationLayerName}
		core.LogInfo("All required validation layers are present.")
	}
	createInfo.EnabledLayerCount = uint32(len(layers))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(layers)

	if err := ResultError(vk.CreateInstance(&createInfo, context.Allocator, &context.Instance), "vkCreateInstance"); err != nil {
		return err
	}
	if err := vk.InitInstance(context.Instance); err != nil {
		return errors.Wrap(err, "failed to load instance functions")
	}
	core.LogInfo("Vulkan Instance created.")

	if validation {
		core.LogDebug("Creating Vulkan debugger...")
		debugCreateInfo := vk.DebugReportCallbackCreateInfo{
			SType: vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags: vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit |
				vk.DebugReportPerformanceWarningBit | vk.DebugReportInformationBit),
			PfnCallback: dbgCallbackFunc,
		}
		var dbg vk.DebugReportCallback
		if err := ResultError(vk.CreateDebugReportCallback(context.Instance, &debugCreateInfo, context.Allocator, &dbg), "vkCreateDebugReportCallback"); err != nil {
			return err
		}
		context.debugCallback = dbg
		core.LogDebug("Vulkan debugger created.")
	}
	return nil
}

func instanceLayers() ([]string, error) {
	var count uint32
	if err := ResultError(vk.EnumerateInstanceLayerProperties(&count, nil), "vkEnumerateInstanceLayerProperties"); err != nil {
		return nil, err
	}
	props := make([]vk.LayerProperties, count)
	if err := ResultError(vk.EnumerateInstanceLayerProperties(&count, props), "vkEnumerateInstanceLayerProperties"); err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for i := range props[:count] {
		props[i].Deref()
		names = append(names, vulkanString(props[i].LayerName[:]))
	}
	return names, nil
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func InstanceDestroy(context *VulkanContext) {
	if context.Instance == nil {
		return
	}
	if context.debugCallback != vk.NullDebugReportCallback {
		core.LogDebug("Destroying Vulkan debugger...")
		vk.DestroyDebugReportCallback(context.Instance, context.debugCallback, context.Allocator)
		context.debugCallback = vk.NullDebugReportCallback
	}
	core.LogDebug("Destroying Vulkan instance...")
	vk.DestroyInstance(context.Instance, context.Allocator)
	context.Instance = nil
}

// DebugSeverity is the log level a debug report message is written at.
type DebugSeverity int

const (
	DebugSeverityInfo DebugSeverity = iota
	DebugSeverityWarn
	DebugSeverityError
)

// ClassifyDebugReport maps report flags to a severity; the most severe bit wins.
func ClassifyDebugReport(flags vk.DebugReportFlags) (DebugSeverity, string) {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		return DebugSeverityError, "ERROR"
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		return DebugSeverityWarn, "WARNING"
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		return DebugSeverityWarn, "PERFORMANCE WARNING"
	case flags&vk.DebugReportFlags(vk.DebugReportDebugBit) != 0:
		return DebugSeverityInfo, "DEBUG"
	}
	return DebugSeverityInfo, "INFORMATION"
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	severity, label := ClassifyDebugReport(flags)
	switch severity {
	case DebugSeverityError:
		core.LogError("%s: [%s] Code %d : %s", label, pLayerPrefix, messageCode, pMessage)
	case DebugSeverityWarn:
		core.LogWarn("%s: [%s] Code %d : %s", label, pLayerPrefix, messageCode, pMessage)
	default:
		core.LogInfo("%s: [%s] Code %d : %s", label, pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
