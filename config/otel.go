// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package config defines the telemetry configuration shared by trellis services.
package config

import "time"

// Resource identifies the service emitting telemetry.
type Resource struct {
	ServiceName    string `config:"service_name"`
	ServiceVersion string `config:"service_version"`
}

// Batch
type Batch struct {
	ExportInterval time.Duration `config:"export_interval"`
	MaxSize        int           `config:"max_size"`
}

// OTLPConnType
type OTLPConnType string

const (
	OTLPHTTP OTLPConnType = "http"
	OTLPGRPC OTLPConnType = "grpc"
)

// OTLP
type OTLP struct {
	Type   OTLPConnType `config:"type"`
	Target string       `config:"target"`
}

// ExporterType selects where a signal is exported to. The zero value
// disables exporting, except for logs which are written to stdout.
type ExporterType string

const (
	NoExporterType   ExporterType = ""
	OTLPExporterType ExporterType = "otlp"
)

// Exporter
type Exporter struct {
	Type ExporterType `config:"type"`
	OTLP OTLP         `config:"otlp"`
}

// ProcessorType
type ProcessorType string

const (
	SimpleProcessorType ProcessorType = "simple"
	BatchProcessorType  ProcessorType = "batch"
)

// Processor
type Processor struct {
	Type  ProcessorType `config:"type"`
	Batch Batch         `config:"batch"`
}

// Trace
type Trace struct {
	Processor     Processor `config:"processor"`
	SamplingRatio float64   `config:"sampling_ratio"`
	Exporter      Exporter  `config:"exporter"`
}

// Metric
type Metric struct {
	ExportInterval time.Duration `config:"export_interval"`
	Exporter       Exporter      `config:"exporter"`
}

// Log configures log export. Levels maps logger names, or prefixes of
// them, to the minimum level emitted.
type Log struct {
	Processor Processor         `config:"processor"`
	Exporter  Exporter          `config:"exporter"`
	Levels    map[string]string `config:"levels"`
}

// OTel
type OTel struct {
	Resource Resource `config:"resource"`
	Trace    Trace    `config:"trace"`
	Metric   Metric   `config:"metric"`
	Log      Log      `config:"log"`
}
