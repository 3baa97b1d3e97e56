// Copyright (c) 2026 The sbus-go Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package busdispatch

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"go.uber.org/net/metrics"
	"go.uber.org/zap"

	"github.com/sssd-project/sbus-go/bustransport"
	"github.com/sssd-project/sbus-go/sbuserrors"
)

// Dispatcher is the sole entry point from the transport: every inbound
// message, regardless of which path or interface it names, is handed to
// Dispatcher.HandleMessage.
type Dispatcher struct {
	registry  *Registry
	transport bustransport.Transport
	logger    *zap.Logger
	tracer    opentracing.Tracer

	unknownMethod *metrics.CounterVector
	dispatched    *metrics.CounterVector
}

// NewDispatcher builds a Dispatcher bound to registry and transport.
// scope may be nil, in which case no metrics are recorded.
func NewDispatcher(registry *Registry, t bustransport.Transport, logger *zap.Logger, tracer opentracing.Tracer, scope *metrics.Scope) *Dispatcher {
	d := &Dispatcher{registry: registry, transport: t, logger: logger, tracer: tracer}
	if scope != nil {
		d.unknownMethod, _ = scope.CounterVector(metrics.Spec{
			Name:      "sbus_unknown_method",
			Help:      "Inbound calls with no matching registered interface or method.",
			VarTags:   []string{"interface", "member"},
			ConstTags: map[string]string{"component": "busdispatch"},
		})
		d.dispatched, _ = scope.CounterVector(metrics.Spec{
			Name:      "sbus_dispatched",
			Help:      "Inbound calls successfully routed to a handler.",
			VarTags:   []string{"interface", "member"},
			ConstTags: map[string]string{"component": "busdispatch"},
		})
	}
	return d
}

// HandleMessage implements bustransport.Handler. Interface and method
// resolution happen synchronously; caller-identity resolution and the
// method invocation run on their own goroutine, so HandleMessage itself
// never blocks.
func (d *Dispatcher) HandleMessage(msg *bustransport.Message) {
	iface, ok := d.registry.LookupIface(msg.Path, msg.Interface)
	if !ok {
		d.incUnknown(msg)
		d.replyUnknownMethod(msg)
		return
	}

	method, ok := iface.MethodByName(msg.Member)
	if !ok {
		d.incUnknown(msg)
		d.replyUnknownMethod(msg)
		return
	}

	d.incDispatched(msg)

	ctx := context.Background()
	span := d.startSpan(msg)
	if span != nil {
		ctx = opentracing.ContextWithSpan(ctx, span)
	}

	req := newRequestContext(msg, iface, method, d.transport, d.logger)

	go func() {
		if span != nil {
			defer span.Finish()
		}

		caller, err := d.transport.ResolveCallerID(ctx, msg.Sender)
		if err != nil {
			d.logger.Warn("caller identity resolution failed",
				zap.String("sender", msg.Sender), zap.Error(err))
			if span != nil {
				ext.Error.Set(span, true)
			}
			_ = req.FailAndFinish(ctx, sbuserrors.FailedErrorf(0, "resolve caller identity: %v", err))
			return
		}
		req.Caller = caller

		method.Invoke(ctx, req)
	}()
}

func (d *Dispatcher) startSpan(msg *bustransport.Message) opentracing.Span {
	if d.tracer == nil {
		return nil
	}
	span := d.tracer.StartSpan(
		msg.Interface+"."+msg.Member,
		opentracing.Tags{
			"sbus.path":      msg.Path,
			"sbus.interface": msg.Interface,
			"sbus.member":    msg.Member,
		},
	)
	return span
}

func (d *Dispatcher) replyUnknownMethod(msg *bustransport.Message) {
	name := sbuserrors.CodeUnknownMethod.DBusName(msg.Interface)
	reply := bustransport.NewErrorReply(name, "no handler for "+msg.Interface+"."+msg.Member)
	if err := d.transport.Reply(context.Background(), msg, reply); err != nil {
		d.logger.Error("failed to reply with UnknownMethod",
			zap.String("path", msg.Path), zap.Error(err))
	}
}

func (d *Dispatcher) incUnknown(msg *bustransport.Message) {
	if d.unknownMethod == nil {
		return
	}
	if c, err := d.unknownMethod.Get("interface", msg.Interface, "member", msg.Member); err == nil {
		c.Inc()
	}
}

func (d *Dispatcher) incDispatched(msg *bustransport.Message) {
	if d.dispatched == nil {
		return
	}
	if c, err := d.dispatched.Get("interface", msg.Interface, "member", msg.Member); err == nil {
		c.Inc()
	}
}
