package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"mm-client-sol/internal/config"
	"mm-client-sol/internal/logic/journal"
	"mm-client-sol/internal/logic/submit"
	"mm-client-sol/internal/logic/txbuilder"
	"mm-client-sol/internal/pkg/logger"
	"mm-client-sol/internal/svc"
	"mm-client-sol/internal/types"

	sdktypes "github.com/blocto/solana-go-sdk/types"
	"github.com/zeromicro/go-zero/core/jsonx"
	"github.com/zeromicro/go-zero/core/logx"
)

var (
	configFile  = flag.String("f", "etc/mmclient.yaml", "the config file")
	keypairFile = flag.String("keypair", "", "solana keypair json file")
	action      = flag.String("action", "balance", "init-user | deposit | init-open-orders | balance")
	amount      = flag.Uint64("amount", 0, "deposit amount in quote token base units")
	market      = flag.String("market", "", "dex market address (init-open-orders)")
	openOrders  = flag.String("open-orders", "", "open orders account address (init-open-orders)")
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("panic: %+v\nstack: %s", r, debug.Stack())
			logger.Sync()
			os.Exit(2)
		}
	}()

	flag.Parse()
	// go-zero 内部日志只保留错误
	logx.DisableStat()
	logx.SetLevel(logx.ErrorLevel)

	c, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config %s: %v\n", *configFile, err)
		os.Exit(1)
	}
	if err := logger.Init(c.Log.ToLogOption()); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	serviceContext, err := svc.NewServiceContext(c)
	if err != nil {
		logger.Errorf("服务上下文初始化失败: %v", err)
		os.Exit(1)
	}
	defer serviceContext.Close()

	// Ctrl-C 放弃等待确认时，结果按不确定处理并记录
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, serviceContext); err != nil {
		logger.Errorf("%s 失败: %v", *action, err)
		exitCode := 1
		switch {
		case submit.IsIndeterminate(err), errors.Is(err, journal.ErrUnresolvedPending):
			exitCode = 3 // 结果未知，重试前先查询链上状态
		}
		logger.Sync()
		serviceContext.Close()
		os.Exit(exitCode)
	}
}

func run(ctx context.Context, sc *svc.ServiceContext) error {
	owner, err := loadKeypair(*keypairFile)
	if err != nil {
		return err
	}
	signer := txbuilder.NewKeypairSigner(owner)

	switch *action {
	case "init-user":
		res, user, err := sc.Accounts.InitUser(ctx, signer)
		if err != nil {
			return err
		}
		logger.Infof("用户账户已创建: user=%s sig=%s slot=%d", user.ToBase58(), res.Signature, res.Slot)

	case "deposit":
		res, err := sc.Accounts.Deposit(ctx, signer, *amount)
		if err != nil {
			return err
		}
		logger.Infof("保证金已存入: amount=%d sig=%s slot=%d", *amount, res.Signature, res.Slot)

	case "init-open-orders":
		marketKey, err := types.TryPubkeyFromBase58(*market)
		if err != nil {
			return fmt.Errorf("-market: %w", err)
		}
		ooKey, err := types.TryPubkeyFromBase58(*openOrders)
		if err != nil {
			return fmt.Errorf("-open-orders: %w", err)
		}
		res, err := sc.Accounts.InitOpenOrders(ctx, signer, marketKey, ooKey)
		if err != nil {
			return err
		}
		logger.Infof("订单账户已创建: market=%s open_orders=%s sig=%s", *market, *openOrders, res.Signature)

	case "balance":
		balance, err := sc.Accounts.QuoteBalance(ctx, owner.PublicKey)
		if err != nil {
			return err
		}
		logger.Infof("计价币余额: wallet=%s amount=%d ui=%s", owner.PublicKey.ToBase58(), balance.Amount, balance.UIAmountString)

	default:
		return fmt.Errorf("unknown action %q", *action)
	}
	return nil
}

// loadKeypair 读取 solana-keygen 生成的 JSON 数组格式私钥
func loadKeypair(path string) (sdktypes.Account, error) {
	if path == "" {
		return sdktypes.Account{}, errors.New("-keypair is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return sdktypes.Account{}, err
	}
	var raw []int
	if err := jsonx.Unmarshal(data, &raw); err != nil {
		return sdktypes.Account{}, fmt.Errorf("decode keypair %s: %w", path, err)
	}
	key := make([]byte, len(raw))
	for i, v := range raw {
		if v < 0 || v > 255 {
			return sdktypes.Account{}, fmt.Errorf("decode keypair %s: byte %d out of range", path, i)
		}
		key[i] = byte(v)
	}
	return sdktypes.AccountFromBytes(key)
}
