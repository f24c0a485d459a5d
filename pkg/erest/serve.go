// Package erest puts an HTTP API in front of the evaluation pipeline,
// so single scenes can be scored on demand.
package erest

import(
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/abworrall/hdr-roundtrip/pkg/efeatures"
	"github.com/abworrall/hdr-roundtrip/pkg/epipeline"
	"github.com/abworrall/hdr-roundtrip/pkg/escene"
	"github.com/abworrall/hdr-roundtrip/pkg/etonemap"
)

var ErrOutsideDataSource = errors.New("path is outside the data source")

// Server evaluates one request at a time; the numeric backend and the
// memory budget are single-owner.
type Server struct {
	Config epipeline.Config
	mu     sync.Mutex
}

func NewServer(cfg epipeline.Config) *Server {
	return &Server{Config: cfg}
}

func (s *Server)Router() *gin.Engine {
	r := gin.Default()
	api := r.Group("/api")
	{
		v1 := api.Group("/v1")
		{
			v1.GET ("/ping",      getPing)
			v1.GET ("/operators", getOperators)
			v1.POST("/evaluate",  s.postEvaluate)
			v1.POST("/transfer",  s.postTransfer)
		}
	}
	return r
}

// Serve listens on addr (e.g. ":8080") until it fails.
func (s *Server)Serve(addr string) error {
	return s.Router().Run(addr)
}

func getPing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}

func getOperators(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"operators": etonemap.Tonemappers,
	})
}

func fail(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}

// respond encodes v before writing any status. Values JSON can't
// carry, like a NaN feature, become a 500 with an error body.
func respond(c *gin.Context, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		fail(c, http.StatusInternalServerError, fmt.Errorf("encoding response: %w", err))
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", b)
}

// resolve turns a request path into a filename inside the data source,
// refusing anything that would escape it.
func (s *Server)resolve(path string) (string, error) {
	root, err := filepath.Abs(s.Config.DataSource)
	if err != nil {
		return "", err
	}
	full := filepath.Join(root, filepath.Clean("/" + path))
	rel, err := filepath.Rel(root, full)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("'%s': %w", path, ErrOutsideDataSource)
	}
	return full, nil
}

// loadScene maps the outcome onto an HTTP status along with any error.
func (s *Server)loadScene(path string) (escene.Scene, int, error) {
	filename, err := s.resolve(path)
	if err != nil {
		return escene.Scene{}, http.StatusBadRequest, err
	}
	if _, err := os.Stat(filename); err != nil {
		return escene.Scene{}, http.StatusNotFound, fmt.Errorf("scene '%s' not found", path)
	}
	if !escene.IsSceneFile(filename) {
		return escene.Scene{}, http.StatusBadRequest, fmt.Errorf("'%s' is not an .exr or .hdr file", path)
	}

	img, err := escene.LoadFile(filename)
	if errors.Is(err, escene.ErrMissingChannel) {
		return escene.Scene{}, http.StatusBadRequest, err
	} else if err != nil {
		return escene.Scene{}, http.StatusInternalServerError, err
	}
	return escene.Scene{Name: escene.SceneName(filename), Image: img}, http.StatusOK, nil
}

type postEvaluateArgs struct {
	Path         string    `json:"path" binding:"required"`
	Operators    []string  `json:"operators"`
	DisplayPeaks []float64 `json:"display_peaks"`
}

type evaluateResponse struct {
	Scene    string               `json:"scene"`
	Features efeatures.Features   `json:"features"`
	Records  []epipeline.Record   `json:"records"`
}

func (s *Server)postEvaluate(c *gin.Context) {
	var args postEvaluateArgs
	if err := c.ShouldBind(&args); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	cfg := s.Config
	if len(args.Operators) > 0 {
		cfg.Operators = args.Operators
	}
	if len(args.DisplayPeaks) > 0 {
		cfg.DisplayPeaks = args.DisplayPeaks
	}
	p, err := epipeline.New(cfg)
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sc, status, err := s.loadScene(args.Path)
	if err != nil {
		fail(c, status, err)
		return
	}
	defer sc.Image.Release()

	recs, err := p.Evaluate(sc)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}

	respond(c, evaluateResponse{Scene: sc.Name, Features: recs[0].Features, Records: recs})
}

type postTransferArgs struct {
	Path  string `json:"path" binding:"required"`
	Train string `json:"train"`
	Test  string `json:"test"`
}

func (s *Server)postTransfer(c *gin.Context) {
	args := postTransferArgs{Train: "reinhard", Test: "filmic"}
	if err := c.ShouldBind(&args); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	tr, err := epipeline.NewTransfer(s.Config, args.Train, args.Test)
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sc, status, err := s.loadScene(args.Path)
	if err != nil {
		fail(c, status, err)
		return
	}
	defer sc.Image.Release()

	rec, err := tr.Evaluate(sc)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	respond(c, rec)
}
