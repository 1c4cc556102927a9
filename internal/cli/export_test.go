package cli

// Export internal functions for testing.

// RunConfigSet exports runConfigSet for testing.
var RunConfigSet = runConfigSet

// RunConfigGet exports runConfigGet for testing.
var RunConfigGet = runConfigGet

// RunConfigList exports runConfigList for testing.
var RunConfigList = runConfigList

// IsValidConfigKey exports isValidConfigKey for testing.
var IsValidConfigKey = isValidConfigKey

// ValidConfigKeys exports validConfigKeys for testing.
var ValidConfigKeys = validConfigKeys

// DeriveOutputPath exports deriveOutputPath for testing.
var DeriveOutputPath = deriveOutputPath

// WarnNonMarkdownExtension exports warnNonMarkdownExtension for testing.
var WarnNonMarkdownExtension = warnNonMarkdownExtension

// WriteFileAtomic exports writeFileAtomic for testing.
var WriteFileAtomic = writeFileAtomic

// AIExtensions exports aiExtensions for testing.
var AIExtensions = aiExtensions

// TreeOutputPath exports treeOutputPath for testing.
var TreeOutputPath = treeOutputPath

// CollectSupportedFiles exports collectSupportedFiles for testing.
var CollectSupportedFiles = collectSupportedFiles

// RefineContent exports refineContent for testing.
var RefineContent = refineContent
