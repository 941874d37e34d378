// Package tracing 提供基于OpenTelemetry的链路追踪
//
// 一次请求对应一个Trace，经过的每层（HTTP处理、用例、仓储）各自创建Span：
//
//	Trace: POST /books/:id/reviews
//	├─ Span: review.Create
//	│  ├─ Span: ReviewRepository.Create
//	│  └─ Span: RatingCache.Invalidate
//	└─ Span: EventPublisher.Publish
//
// 未启用追踪时使用OpenTelemetry默认的noop Provider，StartSpan开销可以忽略。
//
// 使用示例：
//
//	shutdown, err := tracing.InitTracer(ctx, tracing.Config{
//	    Enabled:     true,
//	    ServiceName: "bookreview-api",
//	    Endpoint:    "localhost:4317",
//	    SampleRatio: 1,
//	})
//	if err != nil {
//	    return err
//	}
//	defer shutdown(context.Background())
//
//	ctx, span := tracing.StartSpan(ctx, "review", "Create")
//	defer func() { tracing.End(span, err) }()
package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// Config 追踪配置
type Config struct {
	Enabled     bool
	ServiceName string
	// Endpoint OTLP gRPC端点（host:port，如localhost:4317）
	Endpoint string
	// SampleRatio 采样率，>=1表示全部采样
	SampleRatio float64
	Insecure    bool
}

// InitTracer 初始化全局Tracer Provider
//
// 返回的shutdown必须在进程退出前调用，以刷新批处理中未发送的Span。
// cfg.Enabled为false时不做任何事，返回空shutdown。
func InitTracer(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	// 1. 创建OTLP gRPC Exporter
	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(dialCtx, opts...)
	if err != nil {
		return nil, fmt.Errorf("创建OTLP exporter失败: %w", err)
	}

	// 2. 资源属性（service.name用于在Jaeger UI中分组）
	res, err := resource.New(dialCtx, resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)))
	if err != nil {
		return nil, fmt.Errorf("创建资源属性失败: %w", err)
	}

	// 3. 创建并注册Provider
	tp := NewProvider(cfg.SampleRatio, res, sdktrace.WithBatcher(exporter))
	Register(tp)

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return tp.Shutdown(ctx)
	}, nil
}

// NewProvider 按采样率创建TracerProvider
// 采样器基于父Span决策，根Span按TraceID比例采样
func NewProvider(sampleRatio float64, res *resource.Resource, opts ...sdktrace.TracerProviderOption) *sdktrace.TracerProvider {
	sampler := sdktrace.AlwaysSample()
	if sampleRatio < 1 {
		sampler = sdktrace.TraceIDRatioBased(sampleRatio)
	}

	all := []sdktrace.TracerProviderOption{sdktrace.WithSampler(sdktrace.ParentBased(sampler))}
	if res != nil {
		all = append(all, sdktrace.WithResource(res))
	}
	return sdktrace.NewTracerProvider(append(all, opts...)...)
}

// Register 设置全局Provider和W3C Trace Context传播器
func Register(tp trace.TracerProvider) {
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)
}

// StartSpan 创建Span，ctx中已有Span时成为其子Span
func StartSpan(ctx context.Context, tracerName, spanName string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, spanName)
}

// End 根据err设置Span状态并结束Span
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// ExtractTraceID 从Context提取TraceID（写入日志，便于关联追踪）
func ExtractTraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}

// ExtractSpanID 从Context提取SpanID
func ExtractSpanID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.SpanID().String()
}
