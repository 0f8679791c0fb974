package app

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dotyigit/sobottaai/internal/audio"
	"github.com/dotyigit/sobottaai/internal/catalog"
	"github.com/dotyigit/sobottaai/internal/config"
	"github.com/dotyigit/sobottaai/internal/hotkey"
	"github.com/dotyigit/sobottaai/internal/ipc"
	"github.com/dotyigit/sobottaai/internal/notify"
	"github.com/dotyigit/sobottaai/internal/output"
	"github.com/dotyigit/sobottaai/internal/record"
	"github.com/dotyigit/sobottaai/internal/store"
	"github.com/dotyigit/sobottaai/internal/stt"
	"github.com/dotyigit/sobottaai/internal/transcript"
)

// daemon owns the long-lived dictation stack behind the IPC socket.
type daemon struct {
	logger     *slog.Logger
	recorder   *record.Recorder
	controller *hotkey.Controller
	manager    *stt.Manager
	language   string
	vocabulary []string
	modelID    string
	format     transcript.Options
	committer  *output.Committer
}

func resolveModelsDir(cfg config.Config) (string, error) {
	if strings.TrimSpace(cfg.Models.Dir) != "" {
		return cfg.Models.Dir, nil
	}
	return config.DefaultModelsDir()
}

func newDaemon(cfg config.Config, logger *slog.Logger) (*daemon, error) {
	modelsDir, err := resolveModelsDir(cfg)
	if err != nil {
		return nil, err
	}
	cat, err := catalog.New(modelsDir)
	if err != nil {
		return nil, fmt.Errorf("load model catalog: %w", err)
	}

	vocabulary, _, err := config.BuildVocabulary(cfg)
	if err != nil {
		return nil, err
	}

	sessions := store.New()
	remotes := map[catalog.Kind]stt.RemoteConfig{
		catalog.KindCloudOpenAI: {
			Endpoint: cfg.Remote.OpenAI.Endpoint,
			APIKey:   cfg.Remote.OpenAI.APIKey,
			Model:    cfg.Remote.OpenAI.Model,
			Timeout:  time.Duration(cfg.Remote.OpenAI.TimeoutMS) * time.Millisecond,
		},
		catalog.KindCloudGroq: {
			Endpoint: cfg.Remote.Groq.Endpoint,
			APIKey:   cfg.Remote.Groq.APIKey,
			Model:    cfg.Remote.Groq.Model,
			Timeout:  time.Duration(cfg.Remote.Groq.TimeoutMS) * time.Millisecond,
		},
	}
	manager := stt.NewManager(cat, sessions, remotes, logger)

	artifactDir := ""
	if cfg.Artifacts.SaveAudio {
		artifactDir = cfg.Artifacts.Dir
		if strings.TrimSpace(artifactDir) == "" {
			artifactDir, err = config.DefaultArtifactsDir()
			if err != nil {
				return nil, err
			}
		}
	}

	sink := notify.Fanout{notify.LogSink{Logger: logger}}
	if cfg.Notify.Desktop {
		sink = append(sink, notify.NewDesktopSink(cfg.Notify.AppName, logger))
	}
	opener := &audio.PulseOpener{
		Input:    cfg.Audio.Input,
		Fallback: cfg.Audio.Fallback,
		Format:   audio.SampleFormat(cfg.Audio.Format),
	}
	recorder := record.New(opener, sessions, sink, record.Options{
		Meter:         cfg.Meter.Enable,
		MeterInterval: time.Duration(cfg.Meter.IntervalMS) * time.Millisecond,
		MeterWindow:   cfg.Meter.Window,
		ArtifactDir:   artifactDir,
	}, logger)

	mode, err := hotkey.ParseMode(cfg.Hotkey.Mode)
	if err != nil {
		return nil, err
	}
	binding, err := hotkey.ParseBinding(cfg.Hotkey.Binding)
	if err != nil {
		return nil, fmt.Errorf("hotkey.binding: %w", err)
	}
	controller := hotkey.NewController(recorder, sink, mode, binding, logger)

	var committer *output.Committer
	if cfg.Output.Enable {
		committer = output.New(cfg.Output, logger)
	}

	return &daemon{
		logger:     logger,
		recorder:   recorder,
		controller: controller,
		manager:    manager,
		language:   cfg.STT.Language,
		vocabulary: vocabulary,
		modelID:    cfg.STT.Model,
		format: transcript.Options{
			CapitalizeSentences: cfg.Output.CapitalizeSentences,
			TrailingSpace:       cfg.Output.TrailingSpace,
		},
		committer: committer,
	}, nil
}

// Run serves IPC requests until the context is cancelled.
func (d *daemon) Run(ctx context.Context, listener net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return ipc.Serve(gctx, listener, d)
	})
	return g.Wait()
}

// Handle dispatches one IPC command.
func (d *daemon) Handle(ctx context.Context, req ipc.Request) ipc.Response {
	state := func() string { return string(d.controller.State()) }

	switch req.Command {
	case "status":
		return ipc.Response{OK: true, State: state(), Message: "mode=" + string(d.controller.Mode())}

	case "key-down":
		d.controller.KeyDown()
		return ipc.Response{OK: true, State: state()}

	case "key-up":
		d.controller.KeyUp()
		return ipc.Response{OK: true, State: state()}

	case "start":
		if err := d.recorder.Start(); err != nil {
			return ipc.Response{OK: false, State: state(), Error: err.Error()}
		}
		return ipc.Response{OK: true, State: "recording", Message: "recording started"}

	case "stop":
		result, err := d.recorder.Stop()
		if err != nil {
			return ipc.Response{OK: false, State: state(), Error: err.Error()}
		}
		return ipc.Response{OK: true, State: "idle", Stop: stopPayload(result)}

	case "set-mode":
		mode, err := hotkey.ParseMode(req.Mode)
		if err != nil {
			return ipc.Response{OK: false, State: state(), Error: err.Error()}
		}
		if err := d.controller.SetMode(mode); err != nil {
			return ipc.Response{OK: false, State: state(), Error: err.Error()}
		}
		return ipc.Response{OK: true, State: state(), Message: "mode=" + string(mode)}

	case "rebind":
		if err := d.controller.Rebind(req.Binding); err != nil {
			return ipc.Response{OK: false, State: state(), Error: err.Error()}
		}
		return ipc.Response{OK: true, State: state(), Message: "binding=" + d.controller.Binding().String()}

	case "import":
		result, err := d.recorder.Import(req.Path)
		if err != nil {
			return ipc.Response{OK: false, State: state(), Error: err.Error()}
		}
		return ipc.Response{OK: true, State: state(), Stop: stopPayload(result)}

	case "transcribe":
		modelID := req.ModelID
		if modelID == "" {
			modelID = d.modelID
		}
		language := req.Language
		if language == "" {
			language = d.language
		}
		result, err := d.manager.Transcribe(req.SessionID, modelID, stt.Options{
			Language:   language,
			Vocabulary: d.vocabulary,
		})
		if err != nil {
			return ipc.Response{OK: false, State: state(), Error: err.Error()}
		}
		result.Text = transcript.Assemble([]string{result.Text}, d.format)
		if d.committer != nil {
			if err := d.committer.Commit(ctx, result.Text); err != nil {
				// The transcript is still delivered; losing the clipboard
				// write must not lose the text.
				d.logger.Warn("transcript commit failed", "error", err.Error())
			}
		}
		return ipc.Response{OK: true, State: state(), Transcript: transcriptPayload(result)}

	case "evict":
		d.manager.Evict(req.ModelID)
		return ipc.Response{OK: true, State: state(), Message: "evicted " + req.ModelID}

	default:
		return ipc.Response{OK: false, State: state(), Error: fmt.Sprintf("unknown command: %s", req.Command)}
	}
}

func stopPayload(result record.StopResult) *ipc.StopPayload {
	return &ipc.StopPayload{
		SessionID:   result.SessionID,
		DurationMS:  result.DurationMS,
		SampleCount: result.SampleCount,
	}
}

func transcriptPayload(result stt.Result) *ipc.TranscriptPayload {
	segments := make([]ipc.SegmentPayload, 0, len(result.Segments))
	for _, segment := range result.Segments {
		segments = append(segments, ipc.SegmentPayload{
			StartMS: segment.StartMS,
			EndMS:   segment.EndMS,
			Text:    segment.Text,
		})
	}
	return &ipc.TranscriptPayload{
		Text:       result.Text,
		Language:   result.Language,
		Segments:   segments,
		DurationMS: result.DurationMS,
	}
}
