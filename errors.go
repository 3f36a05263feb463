package initorder

import (
	"errors"
)

// Application errors
var (
	// Configuration errors
	ErrConfigSectionNotFound      = errors.New("config section not found")
	ErrConfigProviderNil          = errors.New("failed to load app config: config provider is nil")
	ErrConfigNil                  = errors.New("config is nil")
	ErrConfigNotPointer           = errors.New("config must be a pointer")
	ErrConfigNotStruct            = errors.New("config must be a struct")
	ErrConfigRequiredFieldMissing = errors.New("required field is missing")
	ErrConfigValidationFailed     = errors.New("config validation failed")
	ErrUnsupportedTypeForDefault  = errors.New("unsupported type for default value")
	ErrDefaultValueParseError     = errors.New("failed to parse default value")
	ErrConfigFeederError          = errors.New("config feeder error")
	ErrUnsupportedFormatType      = errors.New("unsupported format type")

	// Service registry errors
	ErrServiceAlreadyRegistered = errors.New("service already registered")
	ErrServiceNotFound          = errors.New("service not found")

	// Service retrieval errors
	ErrTargetNotPointer    = errors.New("target must be a non-nil pointer")
	ErrServiceIncompatible = errors.New("service cannot be assigned to target")
	ErrServiceNil          = errors.New("service is nil")

	// Dependency resolution errors
	ErrCircularDependency      = errors.New("circular dependency detected")
	ErrModuleDependencyMissing = errors.New("module depends on non-existent module")

	// Startup protocol errors
	ErrInvalidPhaseTransition = errors.New("invalid phase transition")
	ErrInitializerFailed      = errors.New("initializer failed")
	ErrNotInitialized         = errors.New("application not initialized")
	ErrAlreadyInitialized     = errors.New("application already initialized")
	ErrLoggerNotSet           = errors.New("logger not set")

	// Observer errors
	ErrInvalidCloudEvent = errors.New("invalid CloudEvent")
)
