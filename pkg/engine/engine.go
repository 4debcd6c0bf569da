// Package engine implements the top-level graph owner: the audio
// callback, the RT <-> non-RT bridge, and the control-thread
// operations that mutate the track/processor graph (spec.md §4.7).
// Graph mutation is grounded on the double-buffered atomic-pointer
// pattern IntuitionAmiga-IntuitionEngine's audio_backend_oto.go uses
// for its SoundChip (atomic.Pointer[T] read on the hot path, a mutex
// serializing the few writers that publish a new value): every
// control-thread mutation builds a new, fully-formed graph snapshot
// and swaps it in with one atomic store, so the audio thread can never
// observe a graph under construction or follow a dangling pointer.
package engine

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/justyntemme/sushi-go/internal/logx"
	"github.com/justyntemme/sushi-go/pkg/id"
	"github.com/justyntemme/sushi-go/pkg/processor"
	"github.com/justyntemme/sushi-go/pkg/rtevent"
	"github.com/justyntemme/sushi-go/pkg/sample"
	"github.com/justyntemme/sushi-go/pkg/sushierr"
	"github.com/justyntemme/sushi-go/pkg/track"
	"github.com/justyntemme/sushi-go/pkg/transport"
)

// PluginType names where a processor's implementation comes from
// (spec.md §4.7 add_plugin_to_track).
type PluginType int

const (
	Internal PluginType = iota
	VST2x
	VST3x
)

// ProcessorFactory builds a fresh Internal processor instance, looked
// up by uid at AddPluginToTrack time. External formats (VST2x, VST3x)
// have no factory: loading them is outside this engine's scope (see
// DESIGN.md).
type ProcessorFactory func() processor.Processor

type channelConnection struct {
	EngineChannel int
	TrackChannel  int
	TrackName     string
}

type busConnection struct {
	EngineBus int
	TrackBus  int
	TrackName string
}

// graph is an immutable-once-published snapshot of the processor
// graph. Every control-thread mutation builds a new graph value from
// the previous one and atomically publishes it; nothing in this
// struct is ever mutated in place after being loaded by the audio
// thread.
type graph struct {
	tracks         []*track.Track
	trackByName    map[string]*track.Track
	processors     map[id.ObjectID]processor.Processor
	processorNames map[string]id.ObjectID

	inputConns  []channelConnection
	outputConns []channelConnection
	inputBuses  []busConnection
	outputBuses []busConnection
}

func emptyGraph() *graph {
	return &graph{
		trackByName:    make(map[string]*track.Track),
		processors:     make(map[id.ObjectID]processor.Processor),
		processorNames: make(map[string]id.ObjectID),
	}
}

// clone returns a shallow copy of g whose slices and maps are fresh,
// so the caller can mutate the copy without disturbing any snapshot
// already published to the audio thread.
func (g *graph) clone() *graph {
	ng := &graph{
		tracks:         append([]*track.Track(nil), g.tracks...),
		trackByName:    make(map[string]*track.Track, len(g.trackByName)),
		processors:     make(map[id.ObjectID]processor.Processor, len(g.processors)),
		processorNames: make(map[string]id.ObjectID, len(g.processorNames)),
		inputConns:     append([]channelConnection(nil), g.inputConns...),
		outputConns:    append([]channelConnection(nil), g.outputConns...),
		inputBuses:     append([]busConnection(nil), g.inputBuses...),
		outputBuses:    append([]busConnection(nil), g.outputBuses...),
	}
	for k, v := range g.trackByName {
		ng.trackByName[k] = v
	}
	for k, v := range g.processors {
		ng.processors[k] = v
	}
	for k, v := range g.processorNames {
		ng.processorNames[k] = v
	}
	return ng
}

// Engine owns the sample rate, transport, processor graph, and the
// two RT FIFOs bridging the audio thread to every non-RT caller
// (spec.md §4.7).
type Engine struct {
	log *logrus.Entry

	numInputChannels  int
	numOutputChannels int

	transport *transport.Transport

	toRt   *rtevent.Fifo
	fromRt *rtevent.Fifo

	graphMu sync.Mutex // serializes control-thread graph mutations
	graph   atomic.Pointer[graph]

	factories map[string]ProcessorFactory

	// rtBatch is preallocated to the to-RT FIFO's capacity in New and
	// reused block to block, so drainToRt does not allocate on the
	// audio thread unless one drain pops more events than that capacity
	// (only possible while the producer keeps pushing during the drain).
	rtBatch []rtevent.RtEvent

	droppedToRt   atomic.Uint64
	droppedFromRt atomic.Uint64
}

// New creates an Engine with numInputChannels/numOutputChannels
// engine-level audio ports, the given sample rate, and FIFOs of the
// given capacity (rounded up to a power of two by rtevent.NewFifo).
func New(numInputChannels, numOutputChannels int, sampleRate float64, fifoCapacity int) *Engine {
	e := &Engine{
		log:               logx.New("engine"),
		numInputChannels:  numInputChannels,
		numOutputChannels: numOutputChannels,
		transport:         transport.New(sampleRate),
		toRt:              rtevent.NewFifo(fifoCapacity),
		fromRt:            rtevent.NewFifo(fifoCapacity),
		factories:         make(map[string]ProcessorFactory),
	}
	e.rtBatch = make([]rtevent.RtEvent, 0, e.toRt.Capacity())
	e.graph.Store(emptyGraph())
	return e
}

// Transport returns the engine's shared transport clock.
func (e *Engine) Transport() *transport.Transport { return e.transport }

// ToRtFifo returns the to-RT FIFO, for a dispatcher to post into.
func (e *Engine) ToRtFifo() *rtevent.Fifo { return e.toRt }

// FromRtFifo returns the from-RT FIFO, for an AsyncReceiver to drain.
func (e *Engine) FromRtFifo() *rtevent.Fifo { return e.fromRt }

// DroppedToRt returns the engine's to-RT drop counter. Nothing in this
// module increments it: pushes onto the to-RT FIFO go through
// dispatcher.PostRtEvent, which reports a full FIFO to its caller by
// returning false, so the counter stays at 0.
func (e *Engine) DroppedToRt() uint64 { return e.droppedToRt.Load() }

// DroppedFromRt reports how many from-RT events were discarded
// because the FIFO was full, since the engine was created.
func (e *Engine) DroppedFromRt() uint64 { return e.droppedFromRt.Load() }

// RegisterProcessorFactory makes an Internal processor buildable by
// AddPluginToTrack under the given uid.
func (e *Engine) RegisterProcessorFactory(uid string, factory ProcessorFactory) {
	e.graphMu.Lock()
	defer e.graphMu.Unlock()
	e.factories[uid] = factory
}

// CreateTrack adds a new single-bus track under name with the given
// channel count.
func (e *Engine) CreateTrack(name string, channels int) sushierr.Code {
	if name == "" {
		return sushierr.InvalidTrackName
	}
	e.graphMu.Lock()
	defer e.graphMu.Unlock()

	g := e.graph.Load()
	if _, exists := g.trackByName[name]; exists {
		return sushierr.InvalidTrackName
	}

	tr := track.NewSimple(channels)
	tr.SetName(name)
	tr.Parameters().Freeze()

	ng := g.clone()
	ng.tracks = append(ng.tracks, tr)
	ng.trackByName[name] = tr
	ng.processors[tr.ID()] = tr
	ng.processorNames[name] = tr.ID()
	tr.SetEventOutput(e)

	e.graph.Store(ng)
	e.log.WithField("track", name).Debug("track created")
	return sushierr.OK
}

// CreateMultibusTrack adds a new multibus track under name.
func (e *Engine) CreateMultibusTrack(name string, inputBusses, outputBusses int) sushierr.Code {
	if name == "" {
		return sushierr.InvalidTrackName
	}
	e.graphMu.Lock()
	defer e.graphMu.Unlock()

	g := e.graph.Load()
	if _, exists := g.trackByName[name]; exists {
		return sushierr.InvalidTrackName
	}

	tr := track.NewMultibus(inputBusses, outputBusses)
	tr.SetName(name)
	tr.Parameters().Freeze()

	ng := g.clone()
	ng.tracks = append(ng.tracks, tr)
	ng.trackByName[name] = tr
	ng.processors[tr.ID()] = tr
	ng.processorNames[name] = tr.ID()
	tr.SetEventOutput(e)

	e.graph.Store(ng)
	return sushierr.OK
}

// DeleteTrack removes the named track and every processor it owns
// from the graph and the processor registry.
func (e *Engine) DeleteTrack(name string) sushierr.Code {
	e.graphMu.Lock()
	defer e.graphMu.Unlock()

	g := e.graph.Load()
	tr, exists := g.trackByName[name]
	if !exists {
		return sushierr.InvalidTrackName
	}

	ng := g.clone()
	delete(ng.trackByName, name)
	delete(ng.processorNames, name)
	delete(ng.processors, tr.ID())
	for _, p := range tr.Processors() {
		delete(ng.processors, p.ID())
	}
	for i, t := range ng.tracks {
		if t.ID() == tr.ID() {
			ng.tracks = append(ng.tracks[:i], ng.tracks[i+1:]...)
			break
		}
	}
	removeConnsForTrack(&ng.inputConns, name)
	removeConnsForTrack(&ng.outputConns, name)
	removeBusConnsForTrack(&ng.inputBuses, name)
	removeBusConnsForTrack(&ng.outputBuses, name)

	e.graph.Store(ng)
	return sushierr.OK
}

func removeConnsForTrack(conns *[]channelConnection, name string) {
	kept := (*conns)[:0:0]
	for _, c := range *conns {
		if c.TrackName != name {
			kept = append(kept, c)
		}
	}
	*conns = kept
}

func removeBusConnsForTrack(conns *[]busConnection, name string) {
	kept := (*conns)[:0:0]
	for _, c := range *conns {
		if c.TrackName != name {
			kept = append(kept, c)
		}
	}
	*conns = kept
}

// AddPluginToTrack builds a processor from the factory registered
// under uid, names it, and appends it to track_name's chain (spec.md
// §4.7). Only Internal plugins are supported; VST2x/VST3x loading is
// outside this engine's scope.
func (e *Engine) AddPluginToTrack(trackName, uid, name string, pluginType PluginType) (id.ObjectID, sushierr.Code) {
	if pluginType != Internal {
		return id.Invalid, sushierr.InvalidPluginUID
	}
	e.graphMu.Lock()
	defer e.graphMu.Unlock()

	g := e.graph.Load()
	tr, exists := g.trackByName[trackName]
	if !exists {
		return id.Invalid, sushierr.InvalidTrackName
	}
	factory, exists := e.factories[uid]
	if !exists {
		return id.Invalid, sushierr.InvalidPluginUID
	}
	if name == "" {
		return id.Invalid, sushierr.InvalidPluginName
	}
	if _, taken := g.processorNames[name]; taken {
		return id.Invalid, sushierr.InvalidPluginName
	}

	p := factory()
	p.SetName(name)
	if code := p.Init(e.transport.SampleRate()); code != sushierr.OK {
		return id.Invalid, code
	}
	p.Parameters().Freeze()
	if !tr.Add(p) {
		return id.Invalid, sushierr.InvalidProcessor
	}

	ng := g.clone()
	ng.processors[p.ID()] = p
	ng.processorNames[name] = p.ID()
	e.graph.Store(ng)
	return p.ID(), sushierr.OK
}

// RemovePluginFromTrack removes a previously added plugin from its
// track and from the processor registry.
func (e *Engine) RemovePluginFromTrack(trackName string, pid id.ObjectID) sushierr.Code {
	e.graphMu.Lock()
	defer e.graphMu.Unlock()

	g := e.graph.Load()
	tr, exists := g.trackByName[trackName]
	if !exists {
		return sushierr.InvalidTrackName
	}
	if !tr.Remove(pid) {
		return sushierr.InvalidProcessor
	}

	ng := g.clone()
	for name, candidate := range ng.processorNames {
		if candidate == pid {
			delete(ng.processorNames, name)
			break
		}
	}
	delete(ng.processors, pid)
	e.graph.Store(ng)
	return sushierr.OK
}

// ConnectAudioInputChannel routes engine input channel engCh into
// trackCh of trackName's input buffer on every block.
func (e *Engine) ConnectAudioInputChannel(engCh, trackCh int, trackName string) sushierr.Code {
	return e.addChannelConn(engCh, trackCh, trackName, true)
}

// ConnectAudioOutputChannel mixes trackCh of trackName's output buffer
// into engine output channel engCh on every block.
func (e *Engine) ConnectAudioOutputChannel(engCh, trackCh int, trackName string) sushierr.Code {
	return e.addChannelConn(engCh, trackCh, trackName, false)
}

func (e *Engine) addChannelConn(engCh, trackCh int, trackName string, input bool) sushierr.Code {
	if engCh < 0 || trackCh < 0 {
		return sushierr.InvalidChannel
	}
	e.graphMu.Lock()
	defer e.graphMu.Unlock()

	g := e.graph.Load()
	tr, exists := g.trackByName[trackName]
	if !exists {
		return sushierr.InvalidTrackName
	}
	conn := channelConnection{EngineChannel: engCh, TrackChannel: trackCh, TrackName: trackName}

	if input {
		if engCh >= e.numInputChannels || trackCh >= tr.InputChannels() {
			return sushierr.InvalidChannel
		}
		ng := g.clone()
		ng.inputConns = append(ng.inputConns, conn)
		e.graph.Store(ng)
		return sushierr.OK
	}
	if engCh >= e.numOutputChannels || trackCh >= tr.OutputChannels() {
		return sushierr.InvalidChannel
	}
	ng := g.clone()
	ng.outputConns = append(ng.outputConns, conn)
	e.graph.Store(ng)
	return sushierr.OK
}

// ConnectAudioInputBus routes engine input bus engBus (2 channels)
// into trackBus of trackName.
func (e *Engine) ConnectAudioInputBus(engBus, trackBus int, trackName string) sushierr.Code {
	return e.addBusConn(engBus, trackBus, trackName, true)
}

// ConnectAudioOutputBus mixes trackBus of trackName into engine output
// bus engBus (2 channels).
func (e *Engine) ConnectAudioOutputBus(engBus, trackBus int, trackName string) sushierr.Code {
	return e.addBusConn(engBus, trackBus, trackName, false)
}

func (e *Engine) addBusConn(engBus, trackBus int, trackName string, input bool) sushierr.Code {
	if engBus < 0 || trackBus < 0 {
		return sushierr.InvalidBus
	}
	e.graphMu.Lock()
	defer e.graphMu.Unlock()

	g := e.graph.Load()
	tr, exists := g.trackByName[trackName]
	if !exists {
		return sushierr.InvalidTrackName
	}
	conn := busConnection{EngineBus: engBus, TrackBus: trackBus, TrackName: trackName}

	if input {
		if trackBus >= tr.InputBusses() {
			return sushierr.InvalidBus
		}
		ng := g.clone()
		ng.inputBuses = append(ng.inputBuses, conn)
		e.graph.Store(ng)
		return sushierr.OK
	}
	if trackBus >= tr.OutputBusses() {
		return sushierr.InvalidBus
	}
	ng := g.clone()
	ng.outputBuses = append(ng.outputBuses, conn)
	e.graph.Store(ng)
	return sushierr.OK
}

// SetSampleRate updates the transport's sample rate and reconfigures
// every live processor. May allocate; never called from the audio
// thread.
func (e *Engine) SetSampleRate(hz float64) sushierr.Code {
	if hz <= 0 {
		return sushierr.Error
	}
	e.graphMu.Lock()
	defer e.graphMu.Unlock()

	e.transport.SetSampleRate(hz)
	g := e.graph.Load()
	for _, p := range g.processors {
		p.Configure(hz)
	}
	return sushierr.OK
}

// SetTempo sets the transport tempo in BPM.
func (e *Engine) SetTempo(bpm float64) sushierr.Code {
	if bpm <= 0 {
		return sushierr.Error
	}
	e.transport.SetTempo(bpm)
	return sushierr.OK
}

// SetTimeSignature sets the transport time signature.
func (e *Engine) SetTimeSignature(ts transport.TimeSignature) sushierr.Code {
	if ts.Numerator <= 0 || ts.Denominator <= 0 {
		return sushierr.Error
	}
	e.transport.SetTimeSignature(ts)
	return sushierr.OK
}

// SetTransportMode sets the transport's playing mode.
func (e *Engine) SetTransportMode(mode transport.PlayingMode) sushierr.Code {
	e.transport.SetPlayingMode(mode)
	return sushierr.OK
}

// SetTempoSyncMode sets the transport's tempo sync source.
func (e *Engine) SetTempoSyncMode(mode transport.SyncMode) sushierr.Code {
	e.transport.SetSyncMode(mode)
	return sushierr.OK
}

// ProcessorByName resolves a processor id by its registered name.
func (e *Engine) ProcessorByName(name string) (id.ObjectID, bool) {
	g := e.graph.Load()
	pid, ok := g.processorNames[name]
	return pid, ok
}

// ProcessorByID resolves a processor by id, for parameter access from
// the host-control surface.
func (e *Engine) ProcessorByID(pid id.ObjectID) (processor.Processor, bool) {
	g := e.graph.Load()
	p, ok := g.processors[pid]
	return p, ok
}

// TrackNames lists every currently live track's name.
func (e *Engine) TrackNames() []string {
	g := e.graph.Load()
	names := make([]string, 0, len(g.trackByName))
	for name := range g.trackByName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ProcessorNames lists every currently live processor's registered
// name, including tracks.
func (e *Engine) ProcessorNames() []string {
	g := e.graph.Load()
	names := make([]string, 0, len(g.processorNames))
	for name := range g.processorNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OutputEvent implements processor.EventOutput: it is installed as
// every top-level track's event sink, and pushes RT-originated events
// into the from-RT FIFO, incrementing the drop counter instead of
// blocking if the FIFO is full (spec.md §4.7 step 4).
func (e *Engine) OutputEvent(ev rtevent.RtEvent) {
	if !e.fromRt.Push(ev) {
		e.droppedFromRt.Add(1)
	}
}

// Process runs one audio block: it drains pending control events from
// the to-RT FIFO, renders every track in order, mixes each track's
// output into out per the current connection map, and pushes any
// RT-originated events onto the from-RT FIFO (spec.md §4.7, steps
// 1-5). in and out must have exactly numInputChannels/
// numOutputChannels channels of sample.ChunkSize frames; this method
// never blocks or acquires a mutex, so it is safe to call from the
// audio thread. It is not strictly allocation-free: Track.ProcessAudio
// and Track.Render build a small sample.View header for every chain
// stage and output bus, and those headers may be heap-allocated.
func (e *Engine) Process(in, out *sample.Buffer) sushierr.Code {
	if in.ChannelCount() != e.numInputChannels || out.ChannelCount() != e.numOutputChannels {
		return sushierr.InvalidChannel
	}
	g := e.graph.Load()

	out.Clear()
	e.drainToRt(g)

	for _, tr := range g.tracks {
		tr.InputBuffer().Clear()
		routeInput(g, tr, in)
		tr.Render()
		routeOutput(g, tr, out)
	}

	e.transport.AdvanceSamplePos(sample.ChunkSize)
	return sushierr.OK
}

// drainToRt pops every event currently queued in the to-RT FIFO,
// orders them by sample offset (spec.md §5's within-block ordering
// guarantee), and applies each to its addressed processor: parameter
// changes write straight into the parameter's atomic value; every
// other kind is delivered through ProcessEvent. Uses e.rtBatch as
// preallocated scratch space and an insertion sort rather than
// sort.SliceStable, so a drain that fits e.rtBatch's capacity does not
// allocate, and nothing reaches for reflection-based sorting on the
// audio thread.
func (e *Engine) drainToRt(g *graph) {
	e.rtBatch = e.rtBatch[:0]
	for {
		ev, ok := e.toRt.Pop()
		if !ok {
			break
		}
		e.rtBatch = append(e.rtBatch, ev)
	}
	insertionSortByOffset(e.rtBatch)
	for _, ev := range e.rtBatch {
		p, ok := g.processors[ev.ProcessorID()]
		if !ok {
			continue
		}
		switch ev.Type() {
		case rtevent.ParameterChange:
			if v := p.Parameters().Get(ev.ParameterID()); v != nil {
				v.Set(ev.Value())
			}
			continue
		case rtevent.StringPropertyChange:
			if v := p.Parameters().GetString(ev.ParameterID()); v != nil {
				v.Set(ev.StringValue())
			}
			continue
		}
		p.ProcessEvent(ev)
	}
}

// insertionSortByOffset stably sorts batch by SampleOffset in place.
// Insertion sort is the right tool here: batches are small (at most a
// few dozen events per block) and this allocates nothing, unlike
// sort.SliceStable's reflection-backed implementation.
func insertionSortByOffset(batch []rtevent.RtEvent) {
	for i := 1; i < len(batch); i++ {
		for j := i; j > 0 && batch[j-1].SampleOffset() > batch[j].SampleOffset(); j-- {
			batch[j-1], batch[j] = batch[j], batch[j-1]
		}
	}
}

func routeInput(g *graph, tr *track.Track, in *sample.Buffer) {
	dst := tr.InputBuffer()
	for _, c := range g.inputConns {
		if g.trackByName[c.TrackName] != tr {
			continue
		}
		if c.EngineChannel >= in.ChannelCount() || c.TrackChannel >= dst.ChannelCount() {
			continue
		}
		copy(dst.Channel(c.TrackChannel), in.Channel(c.EngineChannel))
	}
	for _, c := range g.inputBuses {
		if g.trackByName[c.TrackName] != tr {
			continue
		}
		for ch := 0; ch < 2; ch++ {
			srcCh := c.EngineBus*2 + ch
			dstCh := c.TrackBus*2 + ch
			if srcCh >= in.ChannelCount() || dstCh >= dst.ChannelCount() {
				continue
			}
			copy(dst.Channel(dstCh), in.Channel(srcCh))
		}
	}
}

func routeOutput(g *graph, tr *track.Track, out *sample.Buffer) {
	src := tr.OutputBuffer()
	for _, c := range g.outputConns {
		if g.trackByName[c.TrackName] != tr {
			continue
		}
		if c.EngineChannel >= out.ChannelCount() || c.TrackChannel >= src.ChannelCount() {
			continue
		}
		mixInto(out.Channel(c.EngineChannel), src.Channel(c.TrackChannel))
	}
	for _, c := range g.outputBuses {
		if g.trackByName[c.TrackName] != tr {
			continue
		}
		for ch := 0; ch < 2; ch++ {
			dstCh := c.EngineBus*2 + ch
			srcCh := c.TrackBus*2 + ch
			if dstCh >= out.ChannelCount() || srcCh >= src.ChannelCount() {
				continue
			}
			mixInto(out.Channel(dstCh), src.Channel(srcCh))
		}
	}
}

func mixInto(dst, src []float32) {
	for i := range dst {
		dst[i] += src[i]
	}
}
