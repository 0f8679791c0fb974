package audio

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

// SampleFormat selects the wire encoding requested from the Pulse server.
// Only two encodings are accepted: float32 passthrough and 16-bit integer
// converted to float.
type SampleFormat string

const (
	FormatFloat32 SampleFormat = "f32"
	FormatInt16   SampleFormat = "s16"
)

// Device describes one Pulse input source.
type Device struct {
	ID          string
	Description string
	SampleRate  int
	Channels    int
	Available   bool
	Muted       bool
	Default     bool
}

// ListDevices returns available Pulse input sources with default/availability
// metadata plus each source's native sample configuration.
func ListDevices(_ context.Context) ([]Device, error) {
	client, err := newClient()
	if err != nil {
		return nil, err
	}
	defer client.Close()

	return listDevices(client)
}

// SelectInput resolves which source a recording started now would use.
func SelectInput(_ context.Context, input string, fallback string) (Device, error) {
	client, err := newClient()
	if err != nil {
		return Device{}, err
	}
	defer client.Close()

	devices, err := listDevices(client)
	if err != nil {
		return Device{}, err
	}
	return selectDevice(devices, input, fallback)
}

func newClient() (*pulse.Client, error) {
	client, err := pulse.NewClient(
		pulse.ClientApplicationName("sobotta"),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: connect pulse server: %v", ErrDeviceUnavailable, err)
	}
	return client, nil
}

func listDevices(client *pulse.Client) ([]Device, error) {
	defaultSource, err := client.DefaultSource()
	if err != nil {
		return nil, fmt.Errorf("%w: read default source: %v", ErrDeviceUnavailable, err)
	}
	defaultID := defaultSource.ID()

	var sourceInfos pulseproto.GetSourceInfoListReply
	if err := client.RawRequest(&pulseproto.GetSourceInfoList{}, &sourceInfos); err != nil {
		return nil, fmt.Errorf("%w: list sources: %v", ErrDeviceUnavailable, err)
	}

	devices := make([]Device, 0, len(sourceInfos))
	for _, source := range sourceInfos {
		if source == nil {
			continue
		}
		devices = append(devices, Device{
			ID:          source.SourceName,
			Description: source.Device,
			SampleRate:  int(source.SampleSpec.Rate),
			Channels:    int(source.SampleSpec.Channels),
			Available:   sourceAvailable(source),
			Muted:       source.Mute,
			Default:     source.SourceName == defaultID,
		})
	}
	return devices, nil
}

// selectDevice resolves the preferred input against live devices, trying the
// fallback preference next and the default source last.
func selectDevice(devices []Device, input string, fallback string) (Device, error) {
	if len(devices) == 0 {
		return Device{}, fmt.Errorf("%w: no input sources found", ErrDeviceUnavailable)
	}

	var defaultDevice *Device
	for i := range devices {
		if devices[i].Default {
			defaultDevice = &devices[i]
		}
	}

	for _, term := range []string{input, fallback} {
		term = strings.TrimSpace(strings.ToLower(term))
		if term == "" || term == "default" {
			continue
		}
		for _, dev := range devices {
			if deviceMatches(dev, term) && dev.Available && !dev.Muted {
				return dev, nil
			}
		}
	}

	if defaultDevice == nil {
		return Device{}, fmt.Errorf("%w: default source unavailable", ErrDeviceUnavailable)
	}
	if defaultDevice.Muted {
		return Device{}, fmt.Errorf("%w: default source %q is muted", ErrDeviceUnavailable, defaultDevice.ID)
	}
	return *defaultDevice, nil
}

func deviceMatches(device Device, term string) bool {
	if term == "" {
		return false
	}
	return strings.Contains(strings.ToLower(device.ID), term) ||
		strings.Contains(strings.ToLower(device.Description), term)
}

// PulseOpener opens the configured Pulse input source at its native sample
// configuration. It satisfies Opener and always runs on the capture thread.
type PulseOpener struct {
	Input    string
	Fallback string
	Format   SampleFormat
}

type pulseStream struct {
	client *pulse.Client
	stream *pulse.RecordStream
	info   StreamInfo
}

func (s *pulseStream) Info() StreamInfo {
	return s.info
}

func (s *pulseStream) Close() error {
	s.stream.Stop()
	s.stream.Close()
	s.client.Close()
	return nil
}

// Open connects, resolves the input source, and starts a record stream at the
// source's reported rate and channel count.
func (o *PulseOpener) Open(onSamples func([]float32)) (Stream, error) {
	var wireFormat byte
	switch o.Format {
	case FormatFloat32, "":
		wireFormat = pulseproto.FormatFloat32LE
	case FormatInt16:
		wireFormat = pulseproto.FormatInt16LE
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, o.Format)
	}

	client, err := newClient()
	if err != nil {
		return nil, err
	}

	devices, err := listDevices(client)
	if err != nil {
		client.Close()
		return nil, err
	}
	selected, err := selectDevice(devices, o.Input, o.Fallback)
	if err != nil {
		client.Close()
		return nil, err
	}

	source, err := client.SourceByID(selected.ID)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: resolve source %q: %v", ErrDeviceUnavailable, selected.ID, err)
	}

	info := StreamInfo{SampleRate: selected.SampleRate, Channels: selected.Channels}
	if info.SampleRate <= 0 {
		info.SampleRate = fallbackSampleRate
	}
	// The record path carries at most two channels; wider sources are mixed
	// down by the server.
	channelOpt := pulse.RecordMono
	if info.Channels >= 2 {
		info.Channels = 2
		channelOpt = pulse.RecordStereo
	} else {
		info.Channels = 1
	}

	decoder := newSampleDecoder(wireFormat, onSamples)
	stream, err := client.NewRecord(
		pulse.NewWriter(decoder, wireFormat),
		pulse.RecordSource(source),
		channelOpt,
		pulse.RecordSampleRate(info.SampleRate),
		pulse.RecordBufferFragmentSize(uint32(fragmentBytes(info, wireFormat))),
		pulse.RecordMediaName("sobotta dictation"),
	)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: create record stream: %v", ErrDeviceUnavailable, err)
	}
	stream.Start()

	return &pulseStream{client: client, stream: stream, info: info}, nil
}

const fallbackSampleRate = 44100

// fragmentBytes sizes stream fragments at roughly 20ms of audio.
func fragmentBytes(info StreamInfo, wireFormat byte) int {
	bytesPerSample := 2
	if wireFormat == pulseproto.FormatFloat32LE {
		bytesPerSample = 4
	}
	return info.SampleRate * info.Channels * bytesPerSample / 50
}

// sampleDecoder converts the record stream's little-endian byte payloads to
// float32 samples, buffering any trailing partial sample between writes. It
// runs inside the stream callback, so it only decodes and hands off.
type sampleDecoder struct {
	format  byte
	emit    func([]float32)
	pending []byte
}

func newSampleDecoder(format byte, emit func([]float32)) *sampleDecoder {
	return &sampleDecoder{format: format, emit: emit}
}

func (d *sampleDecoder) Write(p []byte) (int, error) {
	d.pending = append(d.pending, p...)

	width := 2
	if d.format == pulseproto.FormatFloat32LE {
		width = 4
	}
	whole := len(d.pending) / width * width
	if whole == 0 {
		return len(p), nil
	}

	samples := make([]float32, 0, whole/width)
	for i := 0; i+width <= whole; i += width {
		if d.format == pulseproto.FormatFloat32LE {
			samples = append(samples, math.Float32frombits(binary.LittleEndian.Uint32(d.pending[i:])))
		} else {
			samples = append(samples, float32(int16(binary.LittleEndian.Uint16(d.pending[i:])))/float32(math.MaxInt16))
		}
	}
	d.pending = append(d.pending[:0], d.pending[whole:]...)

	d.emit(samples)
	return len(p), nil
}

// sourceAvailable maps Pulse source port availability to a simple boolean.
func sourceAvailable(source *pulseproto.GetSourceInfoReply) bool {
	if source == nil {
		return false
	}
	if len(source.Ports) == 0 {
		return true
	}
	for _, port := range source.Ports {
		if port.Name != source.ActivePortName {
			continue
		}
		// PulseAudio values: unknown=0, no=1, yes=2.
		return port.Available == 0 || port.Available == 2
	}
	return true
}
