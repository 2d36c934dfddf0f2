package repository

import (
	"bufio"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"ink_goban/internal/bootstrap"
	"ink_goban/internal/domain/game"
	errs "ink_goban/internal/errors"
)

// EngineClient управляет процессом GTP-движка (gnugo, katago gtp и т.п.):
// пишет команды в stdin, читает из stdout. Протокол строчный: на команду
// "id cmd args" движок отвечает блоком "=id текст" или "?id текст",
// завершённым пустой строкой. Команды сериализуются мьютексом.
type EngineClient struct {
	cmd    *exec.Cmd
	stdin  *bufio.Writer
	stdout *bufio.Reader
	mu     sync.Mutex
	nextID int
	log    *zap.SugaredLogger
}

func NewEngineClient(cfg *bootstrap.Config, log *zap.SugaredLogger) (*EngineClient, error) {
	cmd := exec.Command(cfg.EnginePath, strings.Fields(cfg.EngineArgs)...)

	stdinPipe, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}

	client := &EngineClient{
		cmd:    cmd,
		stdin:  bufio.NewWriter(stdinPipe),
		stdout: bufio.NewReader(stdoutPipe),
		log:    log,
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start engine %s: %w", cfg.EnginePath, err)
	}

	log.Infow("engine started", "path", cfg.EnginePath, "args", cfg.EngineArgs)

	return client, nil
}

// send отправляет одну команду и блокируется до полного ответа движка.
func (c *EngineClient) send(command string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	id := c.nextID

	if _, err := fmt.Fprintf(c.stdin, "%d %s\n", id, command); err != nil {
		return "", fmt.Errorf("engine write: %w", err)
	}
	if err := c.stdin.Flush(); err != nil {
		return "", fmt.Errorf("engine write: %w", err)
	}

	block, err := readResponseBlock(c.stdout)
	if err != nil {
		return "", fmt.Errorf("engine read: %w", err)
	}

	c.log.Debugw("engine exchange", "command", command, "response", block)

	ok, respID, text, err := parseResponse(block)
	if err != nil {
		return "", err
	}
	if respID != 0 && respID != id {
		return "", fmt.Errorf("engine response id %d for command %d", respID, id)
	}
	if !ok {
		return "", fmt.Errorf("%w: %s: %s", errs.ErrEngineCommand, command, text)
	}
	return text, nil
}

// readResponseBlock читает строки ответа до пустой строки-терминатора.
func readResponseBlock(r *bufio.Reader) (string, error) {
	var lines []string
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return "", err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			if len(lines) == 0 {
				continue // пустые строки до начала ответа
			}
			return strings.Join(lines, "\n"), nil
		}
		lines = append(lines, line)
	}
}

func parseResponse(block string) (ok bool, id int, text string, err error) {
	if block == "" {
		return false, 0, "", fmt.Errorf("empty engine response")
	}
	switch block[0] {
	case '=':
		ok = true
	case '?':
		ok = false
	default:
		return false, 0, "", fmt.Errorf("unexpected engine response %q", block)
	}

	rest := block[1:]
	i := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	if i > 0 {
		id, _ = strconv.Atoi(rest[:i])
	}
	return ok, id, strings.TrimSpace(rest[i:]), nil
}

func (c *EngineClient) Name() (string, error) {
	return c.send("name")
}

func (c *EngineClient) SetBoardSize(size int) error {
	_, err := c.send(fmt.Sprintf("boardsize %d", size))
	return err
}

func (c *EngineClient) ClearBoard() error {
	_, err := c.send("clear_board")
	return err
}

func (c *EngineClient) Play(colour string, spot game.Stone) error {
	_, err := c.send(fmt.Sprintf("play %s %s", colour, VertexFromStone(spot)))
	return err
}

func (c *EngineClient) GenMove(colour string) (string, error) {
	return c.send(fmt.Sprintf("genmove %s", colour))
}

func (c *EngineClient) ListStones(colour string) ([]game.Stone, error) {
	text, err := c.send(fmt.Sprintf("list_stones %s", colour))
	if err != nil {
		return nil, err
	}

	stones := make([]game.Stone, 0)
	for _, vertex := range strings.Fields(text) {
		spot, err := StoneFromVertex(vertex)
		if err != nil {
			return nil, err
		}
		stones = append(stones, spot)
	}
	return stones, nil
}

func (c *EngineClient) Captures(colour string) (int, error) {
	text, err := c.send(fmt.Sprintf("captures %s", colour))
	if err != nil {
		return 0, err
	}
	count, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("bad captures response %q: %w", text, err)
	}
	return count, nil
}

func (c *EngineClient) Undo() error {
	_, err := c.send("undo")
	return err
}

func (c *EngineClient) Close() error {
	_, _ = c.send("quit")
	return c.cmd.Wait()
}

// Буква I в GTP-вершинах пропускается.
const gtpColumns = "ABCDEFGHJKLMNOPQRSTUVWXYZ"

// VertexFromStone переводит единичные координаты в GTP-вершину ("C3").
func VertexFromStone(spot game.Stone) string {
	return fmt.Sprintf("%c%d", gtpColumns[spot.X-1], spot.Y)
}

// StoneFromVertex разбирает GTP-вершину в единичные координаты.
// PASS и resign вершинами не являются.
func StoneFromVertex(vertex string) (game.Stone, error) {
	v := strings.ToUpper(strings.TrimSpace(vertex))
	if len(v) < 2 {
		return game.Stone{}, fmt.Errorf("bad gtp vertex %q", vertex)
	}

	col := strings.IndexByte(gtpColumns, v[0])
	if col < 0 {
		return game.Stone{}, fmt.Errorf("bad gtp vertex %q", vertex)
	}

	rank, err := strconv.Atoi(v[1:])
	if err != nil || rank < 1 {
		return game.Stone{}, fmt.Errorf("bad gtp vertex %q", vertex)
	}

	return game.Stone{X: col + 1, Y: rank}, nil
}

// IsPass — ответ genmove, означающий пас.
func IsPass(vertex string) bool {
	return strings.EqualFold(strings.TrimSpace(vertex), "PASS")
}

// IsResign — ответ genmove, означающий сдачу.
func IsResign(vertex string) bool {
	return strings.EqualFold(strings.TrimSpace(vertex), "resign")
}
