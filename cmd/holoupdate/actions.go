package main

import (
	"context"
	"fmt"

	appErrors "holoupdate/internal/errors"
)

func dispatch(ctx context.Context, e *env) error {
	inst := e.installer
	switch e.opts.action {
	case actionCurrentChannel:
		ch, err := inst.CurrentChannel(ctx)
		if err != nil {
			return err
		}
		e.printer.Result(ch.String())

	case actionCurrentVersion:
		v, err := inst.CurrentVersion(ctx)
		if err != nil {
			return err
		}
		e.printer.Result(v.String())

	case actionLatestVersion:
		ch, err := inst.EffectiveChannel(ctx, e.opts.channel)
		if err != nil {
			return err
		}
		res, err := inst.LatestVersion(ctx, ch)
		if err != nil {
			return err
		}
		e.printer.Result(res.Latest.Raw)

	case actionInstall:
		ch, err := inst.EffectiveChannel(ctx, e.opts.channel)
		if err != nil {
			return err
		}
		_, err = inst.Install(ctx, ch)
		return err

	case actionUpgrade:
		ch, err := inst.EffectiveChannel(ctx, e.opts.channel)
		if err != nil {
			return err
		}
		_, err = inst.Upgrade(ctx, ch)
		return err

	case actionUninstall:
		return inst.Uninstall(ctx)

	case actionStatus:
		rep, err := inst.Status(ctx)
		if err != nil {
			return err
		}
		e.printer.Status(rep)

	case actionDebugTags:
		rep, err := inst.DebugTags(ctx)
		if err != nil {
			return err
		}
		e.printer.Tags(rep)

	case actionForceRefresh:
		_, err := inst.ForceRefresh(ctx)
		return err

	case actionUpdateGitURL:
		return inst.UpdateGitURL(ctx, e.opts.newGitURL)

	case actionHistory:
		if e.history == nil {
			return appErrors.New(appErrors.CodeHistoryFailed, "history is disabled (history.enabled: false)", nil)
		}
		events, err := e.history.Recent(ctx, inst.Layout().App, e.opts.limit)
		if err != nil {
			return err
		}
		e.printer.History(events)

	default:
		return fmt.Errorf("unknown action %q", e.opts.action)
	}
	return nil
}
