package craftlaunch

import (
	"github.com/bianoble/craftlaunch/internal/engine"
	"github.com/bianoble/craftlaunch/internal/fetch"
	"github.com/bianoble/craftlaunch/internal/launch"
)

// Type aliases re-export engine result types as the public API.
// Users import "github.com/bianoble/craftlaunch/pkg/craftlaunch" and use
// craftlaunch.LaunchPlan, craftlaunch.CheckReport, etc.

type LaunchPlan = engine.LaunchPlan
type Summary = engine.Summary
type CheckReport = engine.CheckReport
type CheckItem = engine.CheckItem
type Status = engine.Status
type InstallResult = engine.InstallResult
type NotInstalledError = engine.NotInstalledError
type Process = launch.Process
type Progress = fetch.Progress
type FetchReport = fetch.Report
