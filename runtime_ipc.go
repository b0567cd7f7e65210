// runtime_ipc.go - Unix domain socket control of a running host

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	ipcMaxRequestSize  = 4096
	ipcMaxResponseSize = 64 * 1024
	ipcFrameTimeout    = 2 * time.Second
	ipcQueueDepth      = 4
)

// Commands that write a file run on the frame loop. The others are
// answered from the connection goroutine.
var ipcFileCommands = map[string][]string{
	"screenshot": {".png"},
	"dump":       {".dot", ".gv"},
}

type ipcRequest struct {
	Cmd  string `json:"cmd"`
	Path string `json:"path,omitempty"`
}

type ipcStatus struct {
	Display     string  `json:"display"`
	Renderer    string  `json:"renderer"`
	Uptime      string  `json:"uptime"`
	Paused      bool    `json:"paused"`
	Frame       uint64  `json:"frame"`
	Ticks       uint64  `json:"ticks"`
	State       string  `json:"state"`
	Shapes      int     `json:"shapes"`
	Draws       int     `json:"draws"`
	Uploads     uint64  `json:"uploads"`
	CacheHits   uint64  `json:"cache_hits"`
	Skipped     uint64  `json:"skipped"`
	Presented   uint64  `json:"presented"`
	PresentErrs uint64  `json:"present_errors"`
	RenderMs    float64 `json:"render_ms"`
}

type ipcResponse struct {
	Status  string     `json:"status"`
	Message string     `json:"message,omitempty"`
	Stats   *ipcStatus `json:"stats,omitempty"`
}

type ipcJob struct {
	req   ipcRequest
	reply chan error
}

// ControlTarget pauses and resumes the frame clock. Its methods must be
// safe to call from another goroutine.
type ControlTarget interface {
	RequestPause()
	Resume()
	Paused() bool
}

// ControlServer listens on a Unix socket and serves gu_host ctl requests.
type ControlServer struct {
	listener net.Listener
	target   ControlTarget
	status   *runtimeStatusStore
	jobs     chan ipcJob
	done     chan struct{}
	sockPath string
}

func resolveSocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "gu-host.sock")
	}
	return "/tmp/gu-host.sock"
}

// NewControlServer binds the control socket at sockPath.
func NewControlServer(sockPath string, target ControlTarget, status *runtimeStatusStore) (*ControlServer, error) {
	ln, err := net.Listen("unix", sockPath)
	if err != nil {
		// Stale socket cleanup: try connecting. If peer is dead, remove and retry.
		conn, dialErr := net.DialTimeout("unix", sockPath, 2*time.Second)
		if dialErr != nil {
			os.Remove(sockPath)
			ln, err = net.Listen("unix", sockPath)
			if err != nil {
				return nil, fmt.Errorf("control socket bind failed: %w", err)
			}
		} else {
			conn.Close()
			return nil, fmt.Errorf("another instance is already listening on %s", sockPath)
		}
	}
	return &ControlServer{
		listener: ln,
		target:   target,
		status:   status,
		jobs:     make(chan ipcJob, ipcQueueDepth),
		done:     make(chan struct{}),
		sockPath: sockPath,
	}, nil
}

// Start begins accepting connections in a goroutine.
func (s *ControlServer) Start() {
	go s.acceptLoop()
}

// Stop closes the listener and waits for the accept loop to exit.
func (s *ControlServer) Stop() {
	s.listener.Close()
	<-s.done
	os.Remove(s.sockPath)
}

// Service runs the queued file commands against ctx. The frame loop calls
// it once per frame.
func (s *ControlServer) Service(ctx *GuContext) {
	for {
		select {
		case job := <-s.jobs:
			job.reply <- runFileCommand(ctx, job.req)
		default:
			return
		}
	}
}

func runFileCommand(ctx *GuContext, req ipcRequest) error {
	switch req.Cmd {
	case "screenshot":
		data, err := ctx.Screenshot()
		if err != nil {
			return err
		}
		return os.WriteFile(req.Path, data, 0o644)
	case "dump":
		return ctx.DumpState(req.Path)
	}
	return fmt.Errorf("unknown command %q", req.Cmd)
}

func (s *ControlServer) acceptLoop() {
	defer close(s.done)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		go s.handleConn(conn)
	}
}

func (s *ControlServer) handleConn(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(10 * time.Second))

	buf := make([]byte, ipcMaxRequestSize)
	n, err := conn.Read(buf)
	if err != nil || n == 0 {
		return
	}

	var req ipcRequest
	if err := json.Unmarshal(buf[:n], &req); err != nil {
		s.writeResponse(conn, ipcResponse{Status: "err", Message: "invalid json"})
		return
	}
	s.writeResponse(conn, s.dispatch(req))
}

func (s *ControlServer) dispatch(req ipcRequest) ipcResponse {
	switch req.Cmd {
	case "pause":
		s.target.RequestPause()
		return ipcResponse{Status: "ok", Message: "paused"}
	case "resume":
		s.target.Resume()
		return ipcResponse{Status: "ok", Message: "resumed"}
	case "stats":
		return ipcResponse{Status: "ok", Stats: s.statusReport()}
	}
	if _, ok := ipcFileCommands[req.Cmd]; !ok {
		return ipcResponse{Status: "err", Message: "unknown command"}
	}
	if err := validateIPCPath(req.Cmd, req.Path); err != nil {
		return ipcResponse{Status: "err", Message: err.Error()}
	}
	if s.target.Paused() {
		return ipcResponse{Status: "err", Message: "frame loop is paused"}
	}

	job := ipcJob{req: req, reply: make(chan error, 1)}
	timeout := time.NewTimer(ipcFrameTimeout)
	defer timeout.Stop()
	select {
	case s.jobs <- job:
	case <-timeout.C:
		return ipcResponse{Status: "err", Message: "command queue full"}
	}
	select {
	case err := <-job.reply:
		if err != nil {
			return ipcResponse{Status: "err", Message: err.Error()}
		}
		return ipcResponse{Status: "ok", Message: req.Path}
	case <-timeout.C:
		return ipcResponse{Status: "err", Message: "frame loop did not answer"}
	}
}

func (s *ControlServer) statusReport() *ipcStatus {
	snap := s.status.snapshot()
	return &ipcStatus{
		Display:     snap.Display,
		Renderer:    snap.Renderer,
		Uptime:      time.Since(snap.Started).Round(time.Second).String(),
		Paused:      s.target.Paused(),
		Frame:       snap.Stats.Frame,
		Ticks:       snap.Stats.VirtualTicks,
		State:       snap.Stats.State.String(),
		Shapes:      snap.Stats.Shapes,
		Draws:       snap.Stats.Draws,
		Uploads:     snap.Stats.Uploads,
		CacheHits:   snap.Stats.CacheHits,
		Skipped:     snap.Skipped,
		Presented:   snap.Presented,
		PresentErrs: snap.PresentErrs,
		RenderMs:    float64(snap.Stats.Render.Microseconds()) / 1000,
	}
}

func (s *ControlServer) writeResponse(conn net.Conn, resp ipcResponse) {
	data, _ := json.Marshal(resp)
	conn.Write(data)
}

func validateIPCPath(cmd, path string) error {
	if !filepath.IsAbs(path) {
		return fmt.Errorf("absolute path required")
	}
	ext := strings.ToLower(filepath.Ext(path))
	allowed := false
	for _, e := range ipcFileCommands[cmd] {
		allowed = allowed || e == ext
	}
	if !allowed {
		return fmt.Errorf("unsupported extension for %s: %q", cmd, ext)
	}
	dir, err := os.Stat(filepath.Dir(path))
	if err != nil || !dir.IsDir() {
		return fmt.Errorf("directory not found: %s", filepath.Dir(path))
	}
	if info, err := os.Lstat(path); err == nil && !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file: %s", path)
	}
	return nil
}

// sendControlAt sends one request to the instance at sockPath.
func sendControlAt(sockPath string, req ipcRequest) (ipcResponse, error) {
	conn, err := net.DialTimeout("unix", sockPath, 10*time.Second)
	if err != nil {
		return ipcResponse{}, fmt.Errorf("cannot connect to running instance: %w", err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(10 * time.Second))

	data, _ := json.Marshal(req)
	if _, err := conn.Write(data); err != nil {
		return ipcResponse{}, fmt.Errorf("send failed: %w", err)
	}

	body, err := io.ReadAll(io.LimitReader(conn, ipcMaxResponseSize))
	if err != nil {
		return ipcResponse{}, fmt.Errorf("read response failed: %w", err)
	}

	var resp ipcResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return ipcResponse{}, fmt.Errorf("invalid response: %w", err)
	}
	if resp.Status != "ok" {
		return resp, fmt.Errorf("remote error: %s", resp.Message)
	}
	return resp, nil
}

func runControlClient(args []string) int {
	return controlClient(args, os.Stdout)
}

// controlClient implements "gu_host ctl". File paths are made absolute
// before they are sent.
func controlClient(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("ctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	sock := fs.String("socket", resolveSocketPath(), "Control socket path")
	if err := fs.Parse(args); err != nil || fs.NArg() == 0 {
		fmt.Fprintln(out, "Usage: gu_host ctl [-socket path] pause|resume|stats|screenshot <file>|dump <file>")
		return 2
	}

	req := ipcRequest{Cmd: strings.ToLower(fs.Arg(0))}
	if _, ok := ipcFileCommands[req.Cmd]; ok {
		if fs.NArg() < 2 {
			fmt.Fprintf(out, "Error: %s needs a file name\n", req.Cmd)
			return 2
		}
		abs, err := filepath.Abs(fs.Arg(1))
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return 1
		}
		req.Path = abs
	}

	resp, err := sendControlAt(*sock, req)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return 1
	}
	if st := resp.Stats; st != nil {
		fmt.Fprintf(out, "display %s, renderer %s, up %s, paused %v\n", st.Display, st.Renderer, st.Uptime, st.Paused)
		fmt.Fprintf(out, "frame %d, ticks %d, state %s\n", st.Frame, st.Ticks, st.State)
		fmt.Fprintf(out, "shapes %d, draws %d, uploads %d, cache hits %d\n", st.Shapes, st.Draws, st.Uploads, st.CacheHits)
		fmt.Fprintf(out, "presented %d, skipped %d, present errors %d, render %.2fms\n", st.Presented, st.Skipped, st.PresentErrs, st.RenderMs)
		return 0
	}
	if resp.Message != "" {
		fmt.Fprintln(out, resp.Message)
	}
	return 0
}
