package reader

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/example/woodchipper/internal/message"
)

const (
	minPollInterval = 2 * time.Second
	maxPollInterval = 5 * time.Second

	streamBackoffInitial = 250 * time.Millisecond
	streamBackoffMax     = 2 * time.Second
)

// containerKey identifies one active log follower.
type containerKey struct {
	Pod       string
	Container string
}

// KubernetesReader discovers pods matching the user's selector and follows
// their container logs. Discovery repeats on a bounded poll interval so
// restarts and rollouts are followed; per-pod ordering is preserved, but
// entries from different pods interleave without ordering guarantees.
type KubernetesReader struct {
	// Namespace to read; empty uses the kubeconfig default.
	Namespace string

	// Selectors are pod-name substrings (OR semantics), or a single
	// key=value label selector.
	Selectors []string

	// PollInterval between pod rediscoveries; clamped to [2s, 5s].
	PollInterval time.Duration

	// Log receives debug diagnostics; nil means no logging.
	Log *zap.Logger

	// NewClient overrides API client construction; tests use it.
	NewClient func() (kubernetes.Interface, string, error)

	mu    sync.Mutex
	tails map[containerKey]context.CancelFunc
}

// IsLabelSelector reports whether the positional args form a Kubernetes
// label selector rather than pod-name substrings: a single argument
// containing selector syntax.
func IsLabelSelector(args []string) bool {
	if len(args) != 1 {
		return false
	}
	if strings.ContainsAny(args[0], "=!()") {
		return true
	}
	return strings.Contains(args[0], " in ") || strings.Contains(args[0], " notin ")
}

func (r *KubernetesReader) logger() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}

func (r *KubernetesReader) pollInterval() time.Duration {
	d := r.PollInterval
	if d < minPollInterval {
		d = minPollInterval
	}
	if d > maxPollInterval {
		d = maxPollInterval
	}
	return d
}

// defaultClient builds a clientset from the usual kubeconfig loading
// rules and reports the effective namespace.
func defaultClient(namespace string) (kubernetes.Interface, string, error) {
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	overrides := &clientcmd.ConfigOverrides{}
	if namespace != "" {
		overrides.Context.Namespace = namespace
	}
	loader := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides)

	restConfig, err := loader.ClientConfig()
	if err != nil {
		return nil, "", fmt.Errorf("load kubeconfig: %w", err)
	}
	ns, _, err := loader.Namespace()
	if err != nil {
		return nil, "", fmt.Errorf("resolve namespace: %w", err)
	}
	client, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, "", fmt.Errorf("build client: %w", err)
	}
	return client, ns, nil
}

func (r *KubernetesReader) Start(out chan<- message.LogEntry, exit Exit) {
	go r.run(out, exit)
}

func (r *KubernetesReader) run(out chan<- message.LogEntry, exit Exit) {
	log := r.logger()
	defer func() {
		if exit.Ack != nil {
			close(exit.Ack)
		}
	}()

	newClient := r.NewClient
	if newClient == nil {
		newClient = func() (kubernetes.Interface, string, error) {
			return defaultClient(r.Namespace)
		}
	}
	client, namespace, err := newClient()
	if err != nil {
		out <- message.InternalEntry(message.LevelError, err.Error())
		out <- message.EOFEntry()
		return
	}

	r.tails = make(map[containerKey]context.CancelFunc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if exit.Req != nil {
		go func() {
			<-exit.Req
			cancel()
		}()
	}

	out <- message.InternalEntry(message.LevelInfo,
		fmt.Sprintf("watching pods in namespace %s", namespace))

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return r.discover(ctx, eg, client, namespace, out, log)
	})

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		out <- message.InternalEntry(message.LevelError, err.Error())
	}
	out <- message.EOFEntry()
}

// discover polls the pod list and reconciles the follower set: new
// matching containers get a follower, vanished pods get theirs cancelled
// without ending the reader.
func (r *KubernetesReader) discover(
	ctx context.Context, eg *errgroup.Group, client kubernetes.Interface,
	namespace string, out chan<- message.LogEntry, log *zap.Logger,
) error {
	listOpts := metav1.ListOptions{}
	useSelector := IsLabelSelector(r.Selectors)
	if useSelector {
		listOpts.LabelSelector = r.Selectors[0]
	}

	ticker := time.NewTicker(r.pollInterval())
	defer ticker.Stop()

	for {
		pods, err := client.CoreV1().Pods(namespace).List(ctx, listOpts)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			out <- message.InternalEntry(message.LevelError,
				fmt.Sprintf("list pods: %v", err))
		} else {
			r.reconcile(ctx, eg, client, namespace, pods.Items, useSelector, out, log)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// podMatches applies the substring selectors with OR semantics; an empty
// selector list matches everything.
func podMatches(name string, selectors []string) bool {
	if len(selectors) == 0 {
		return true
	}
	for _, s := range selectors {
		if strings.Contains(name, s) {
			return true
		}
	}
	return false
}

func (r *KubernetesReader) reconcile(
	ctx context.Context, eg *errgroup.Group, client kubernetes.Interface,
	namespace string, pods []corev1.Pod, useSelector bool,
	out chan<- message.LogEntry, log *zap.Logger,
) {
	seen := make(map[containerKey]bool)

	for i := range pods {
		pod := &pods[i]
		if !useSelector && !podMatches(pod.Name, r.Selectors) {
			continue
		}
		if pod.Status.Phase == corev1.PodSucceeded || pod.Status.Phase == corev1.PodFailed {
			continue
		}
		for _, container := range pod.Spec.Containers {
			key := containerKey{Pod: pod.Name, Container: container.Name}
			seen[key] = true

			r.mu.Lock()
			_, active := r.tails[key]
			if !active {
				tailCtx, tailCancel := context.WithCancel(ctx)
				r.tails[key] = tailCancel
				podName, containerName := pod.Name, container.Name
				eg.Go(func() error {
					defer r.stopTail(key)
					r.streamContainer(tailCtx, client, namespace, podName, containerName, out, log)
					return nil
				})
				log.Debug("starting tail",
					zap.String("pod", podName), zap.String("container", containerName))
			}
			r.mu.Unlock()
		}
	}

	// end followers for pods that disappeared
	r.mu.Lock()
	for key, tailCancel := range r.tails {
		if !seen[key] {
			log.Debug("stopping tail",
				zap.String("pod", key.Pod), zap.String("container", key.Container))
			tailCancel()
		}
	}
	r.mu.Unlock()
}

func (r *KubernetesReader) stopTail(key containerKey) {
	r.mu.Lock()
	if cancel, ok := r.tails[key]; ok {
		cancel()
		delete(r.tails, key)
	}
	r.mu.Unlock()
}

// isRetryableStreamErr matches the apiserver errors emitted while a
// container is still coming up.
func isRetryableStreamErr(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "is waiting to start") ||
		strings.Contains(msg, "containercreating") ||
		strings.Contains(msg, "podinitializing")
}

// streamContainer follows one container's log stream until the context is
// cancelled or the stream ends for good, retrying with backoff while the
// container starts.
func (r *KubernetesReader) streamContainer(
	ctx context.Context, client kubernetes.Interface,
	namespace, pod, container string,
	out chan<- message.LogEntry, log *zap.Logger,
) {
	source := pod + "/" + container
	logOpts := &corev1.PodLogOptions{
		Container:  container,
		Follow:     true,
		Timestamps: true,
	}

	backoff := streamBackoffInitial
	for {
		if ctx.Err() != nil {
			return
		}

		stream, err := client.CoreV1().Pods(namespace).GetLogs(pod, logOpts).Stream(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if isRetryableStreamErr(err) {
				select {
				case <-ctx.Done():
					return
				case <-time.After(backoff):
				}
				if backoff < streamBackoffMax {
					backoff *= 2
				}
				continue
			}
			out <- message.InternalEntry(message.LevelError,
				fmt.Sprintf("stream %s: %v", source, err))
			return
		}

		backoff = streamBackoffInitial
		scanner := bufio.NewScanner(stream)
		scanner.Buffer(make([]byte, 0, scanBufferInitial), scanBufferMax)
		for scanner.Scan() {
			if ctx.Err() != nil {
				_ = stream.Close()
				return
			}
			line, meta := splitAPITimestamp(scanner.Text(), source)
			select {
			case out <- message.LineEntry(line, meta):
			case <-ctx.Done():
				_ = stream.Close()
				return
			}
		}
		scanErr := scanner.Err()
		_ = stream.Close()

		switch {
		case ctx.Err() != nil:
			return
		case scanErr != nil && isRetryableStreamErr(scanErr):
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < streamBackoffMax {
				backoff *= 2
			}
		case scanErr != nil:
			out <- message.InternalEntry(message.LevelError,
				fmt.Sprintf("stream %s: %v", source, scanErr))
			return
		default:
			log.Debug("container stream ended",
				zap.String("pod", pod), zap.String("container", container))
			return
		}
	}
}

// splitAPITimestamp strips the leading RFC-3339 timestamp the log API
// prepends when Timestamps is set, carrying it as the authoritative reader
// timestamp hint.
func splitAPITimestamp(line, source string) (string, *message.ReaderMetadata) {
	meta := &message.ReaderMetadata{Source: source}

	idx := strings.IndexByte(line, ' ')
	if idx <= 0 {
		return line, meta
	}
	ts, err := time.Parse(time.RFC3339Nano, line[:idx])
	if err != nil {
		return line, meta
	}
	utc := ts.UTC()
	meta.Timestamp = &utc
	return line[idx+1:], meta
}
