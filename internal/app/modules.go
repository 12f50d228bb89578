package app

import (
	"github.com/vk/xreportgo/internal/registry"
	"github.com/vk/xreportgo/modules/featureimportance"
	"github.com/vk/xreportgo/modules/htmlwriter"
	"github.com/vk/xreportgo/modules/interpreter"
	"github.com/vk/xreportgo/modules/pdfwriter"
	"github.com/vk/xreportgo/modules/textwriter"
)

// coreModules is the definitive list of all modules that are compiled into
// the xreport binary.
var coreModules = []registry.Module{
	&featureimportance.Module{},
	&interpreter.Module{},
	&pdfwriter.Module{},
	&htmlwriter.Module{},
	&textwriter.Module{},
}
