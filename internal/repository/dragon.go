package repository

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ink_goban/internal/bootstrap"
	"ink_goban/internal/domain/dragon"
	errs "ink_goban/internal/errors"
)

const statusCacheTTL = time.Minute

// DragonRepository ходит на Dragon Go Server по quick-API: логин с
// cookie-сессией, CSV-лента партий, выгрузка SGF и отправка хода.
// Лента статуса ненадолго кэшируется в Redis, чтобы не дёргать сервер
// при каждой перерисовке списка партий.
type DragonRepository struct {
	cfg    bootstrap.Config
	log    *zap.SugaredLogger
	client *http.Client
	redis  *redis.Client // nil — кэш выключен
}

func NewDragonRepository(cfg bootstrap.Config, log *zap.SugaredLogger, redisClient *redis.Client) *DragonRepository {
	jar, _ := cookiejar.New(nil)
	return &DragonRepository{
		cfg: cfg,
		log: log,
		client: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
		redis: redisClient,
	}
}

// LoadLoginInfo читает файл логина. Отсутствующий или битый файл не
// ошибка: на его место записывается болванка, которую заполнит владелец
// планшета.
func (d *DragonRepository) LoadLoginInfo() (dragon.LoginInfo, error) {
	raw, err := os.ReadFile(d.cfg.DragonLoginFile)
	if err != nil {
		d.log.Warnw("can't read login file, dumping default", "path", d.cfg.DragonLoginFile, "error", err)
		info := dragon.LoginInfo{}
		return info, d.SaveLoginInfo(info)
	}

	var info dragon.LoginInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		d.log.Warnw("bad login file, dumping default", "path", d.cfg.DragonLoginFile, "error", err)
		info = dragon.LoginInfo{}
		return info, d.SaveLoginInfo(info)
	}
	return info, nil
}

func (d *DragonRepository) SaveLoginInfo(info dragon.LoginInfo) error {
	raw, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(d.cfg.DragonLoginFile, raw, 0600)
}

func (d *DragonRepository) Login(ctx context.Context, info dragon.LoginInfo) error {
	endpoint := fmt.Sprintf("%s/login.php?quick_mode=1&userid=%s&passwd=%s",
		d.cfg.DragonBaseUrl, url.QueryEscape(info.Username), url.QueryEscape(info.Password))

	body, err := d.do(ctx, http.MethodPost, endpoint)
	if err != nil {
		return err
	}
	if !strings.Contains(body, "Ok") {
		return fmt.Errorf("%w: %s", errs.ErrLoginFailed, strings.TrimSpace(body))
	}

	d.log.Infow("dragon login ok", "user", info.Username)
	return nil
}

func (d *DragonRepository) QuickStatus(ctx context.Context, username string) ([]dragon.GameRecord, error) {
	if cached, ok := d.cachedStatus(ctx, username); ok {
		return cached, nil
	}

	endpoint := fmt.Sprintf("%s/quick_status.php?user=%s&version=2",
		d.cfg.DragonBaseUrl, url.QueryEscape(username))

	body, err := d.do(ctx, http.MethodGet, endpoint)
	if err != nil {
		return nil, err
	}

	records, err := parseQuickStatus(strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	d.cacheStatus(ctx, username, records)
	return records, nil
}

func (d *DragonRepository) cachedStatus(ctx context.Context, username string) ([]dragon.GameRecord, bool) {
	if d.redis == nil {
		return nil, false
	}
	raw, err := d.redis.Get(ctx, "dragon:status:"+username).Result()
	if err != nil {
		return nil, false
	}
	var records []dragon.GameRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, false
	}
	return records, true
}

func (d *DragonRepository) cacheStatus(ctx context.Context, username string, records []dragon.GameRecord) {
	if d.redis == nil {
		return
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return
	}
	if err := d.redis.Set(ctx, "dragon:status:"+username, raw, statusCacheTTL).Err(); err != nil {
		d.log.Warnw("can't cache dragon status", "error", err)
	}
}

func (d *DragonRepository) FetchSGF(ctx context.Context, gameID string) (string, error) {
	endpoint := fmt.Sprintf("%s/sgf.php?gid=%s", d.cfg.DragonBaseUrl, url.QueryEscape(gameID))
	return d.do(ctx, http.MethodGet, endpoint)
}

func (d *DragonRepository) SubmitMove(ctx context.Context, gameID string, moveID int, sgfCoord string) error {
	endpoint := fmt.Sprintf("%s/quick_play.php?gid=%s&move_id=%d&move=%s",
		d.cfg.DragonBaseUrl, url.QueryEscape(gameID), moveID, url.QueryEscape(sgfCoord))

	body, err := d.do(ctx, http.MethodPost, endpoint)
	if err != nil {
		return err
	}
	if !strings.Contains(body, "Ok") {
		return fmt.Errorf("%w: submit move: %s", errs.ErrEngineCommand, strings.TrimSpace(body))
	}
	return nil
}

func (d *DragonRepository) do(ctx context.Context, method, endpoint string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("dragon request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("dragon request: status %s", resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("dragon response: %w", err)
	}
	return string(raw), nil
}

// parseQuickStatus разбирает ленту quick_status: CSV без заголовков,
// переменная длина строк, партии — строки, начинающиеся с "G".
func parseQuickStatus(r io.Reader) ([]dragon.GameRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var records []dragon.GameRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("quick_status csv: %w", err)
		}
		if len(row) == 0 || !strings.HasPrefix(row[0], "G") {
			continue
		}

		record, err := parseGameRow(row)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func parseGameRow(row []string) (dragon.GameRecord, error) {
	if len(row) < 15 {
		return dragon.GameRecord{}, fmt.Errorf("quick_status row too short: %d fields", len(row))
	}

	lastMove, err := parseDragonDate(row[4])
	if err != nil {
		return dragon.GameRecord{}, err
	}
	remaining, err := parseTimeRemaining(row[5])
	if err != nil {
		return dragon.GameRecord{}, err
	}
	opponentSeen, err := parseDragonDate(row[13])
	if err != nil {
		return dragon.GameRecord{}, err
	}

	return dragon.GameRecord{
		GameID:                 unquote(row[1]),
		OpponentHandle:         unquote(row[2]),
		PlayerColor:            unquote(row[3]),
		LastMoveDate:           lastMove,
		TimeRemaining:          remaining,
		GameAction:             atoiField(row[6]),
		GameStatus:             unquote(row[7]),
		MoveID:                 atoiField(row[8]),
		TournamentID:           atoiField(row[9]),
		ShapeID:                atoiField(row[10]),
		GameType:               unquote(row[11]),
		GamePrio:               atoiField(row[12]),
		OpponentLastAccessDate: opponentSeen,
		Handicap:               atoiField(row[14]),
	}, nil
}

func unquote(s string) string {
	return strings.Trim(strings.TrimSpace(s), "'")
}

func atoiField(s string) int {
	n, _ := strconv.Atoi(unquote(s))
	return n
}

// parseDragonDate понимает даты ленты: '2024-01-02 03:04:05' (UTC).
func parseDragonDate(s string) (time.Time, error) {
	cleaned := unquote(s)
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", cleaned, time.UTC); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, cleaned+"Z")
	if err != nil {
		return time.Time{}, fmt.Errorf("bad dragon date %q", s)
	}
	return t.UTC(), nil
}

// parseTimeRemaining разбирает фишеровское время "F: 15d 3h (+ 1d)".
func parseTimeRemaining(s string) (time.Duration, error) {
	cleaned := unquote(s)
	if !strings.HasPrefix(cleaned, "F") {
		return 0, fmt.Errorf("unsupported time format %q", s)
	}

	rest := cleaned
	if i := strings.IndexByte(rest, ':'); i >= 0 {
		rest = rest[i+1:]
	}
	if i := strings.IndexByte(rest, '('); i >= 0 {
		rest = rest[:i]
	}

	var total time.Duration
	for _, piece := range strings.Fields(rest) {
		if len(piece) < 2 {
			return 0, fmt.Errorf("bad time piece %q in %q", piece, s)
		}
		value, err := strconv.ParseInt(piece[:len(piece)-1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("bad time piece %q in %q", piece, s)
		}
		switch piece[len(piece)-1] {
		case 'd':
			total += time.Duration(value) * 24 * time.Hour
		case 'h':
			total += time.Duration(value) * time.Hour
		default:
			return 0, fmt.Errorf("bad time unit in %q", piece)
		}
	}
	return total, nil
}
