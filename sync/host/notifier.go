package host

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/ocxide/monee/internal/id"
)

// SNSNotifier is an optional best-effort publisher of NodeSynced/SyncFailed
// to an SNS topic. It runs strictly after ApplyChanges has already decided
// the HTTP response (200/409/422), so a notification failure can never
// change that response — it is logged and dropped. Disabled (a no-op) when
// TopicARN is empty, which is the expected configuration for a host that
// doesn't want this side channel (spec.md's notification fan-out is not a
// requirement, only an enrichment named in SPEC_FULL.md's domain stack).
type SNSNotifier struct {
	Client   *sns.Client
	TopicARN string
	Logger   *log.Logger
}

func (n *SNSNotifier) NodeSynced(nodeID id.AppID) {
	n.publish(fmt.Sprintf(`{"type":"node_synced","node_id":%q}`, nodeID.String()))
}

func (n *SNSNotifier) SyncFailed(nodeID id.AppID, message string) {
	n.publish(fmt.Sprintf(`{"type":"sync_failed","node_id":%q,"message":%q}`, nodeID.String(), message))
}

func (n *SNSNotifier) publish(message string) {
	if n == nil || n.TopicARN == "" {
		return
	}
	_, err := n.Client.Publish(context.Background(), &sns.PublishInput{
		TopicArn: aws.String(n.TopicARN),
		Message:  aws.String(message),
	})
	if err != nil && n.Logger != nil {
		n.Logger.Printf("sync/host: sns publish failed: %v", err)
	}
}
