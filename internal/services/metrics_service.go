package services

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// DefaultMetricNamespace is used when METRIC_NAMESPACE is unset
const DefaultMetricNamespace = "PLM/Workflow"

// MetricPutter is the CloudWatch call used for transition counts
type MetricPutter interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// MetricsService records one Transitions datum per workflow event
type MetricsService struct {
	client    MetricPutter
	namespace string
}

// NewMetricsService creates a CloudWatch sink
func NewMetricsService(cfg aws.Config, namespace string) *MetricsService {
	return NewMetricsServiceWithClient(cloudwatch.NewFromConfig(cfg), namespace)
}

// NewMetricsServiceWithClient wires an existing CloudWatch client
func NewMetricsServiceWithClient(client MetricPutter, namespace string) *MetricsService {
	if namespace == "" {
		namespace = DefaultMetricNamespace
	}
	return &MetricsService{client: client, namespace: namespace}
}

// Publish implements Publisher
func (m *MetricsService) Publish(ctx context.Context, ev Event) error {
	at := ev.At
	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []cwtypes.MetricDatum{{
			MetricName: aws.String("Transitions"),
			Timestamp:  &at,
			Unit:       cwtypes.StandardUnitCount,
			Value:      aws.Float64(1),
			Dimensions: []cwtypes.Dimension{{Name: aws.String("Kind"), Value: aws.String(string(ev.Kind))}},
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to put transition metric: %w", err)
	}
	return nil
}
