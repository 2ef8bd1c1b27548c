// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package secrets reads secret values from Secret Manager.
package secrets

import (
	"context"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/presspage/presspage/internal/derrors"
)

// versionName returns the resource name of the latest version of the
// named secret in project.
func versionName(project, name string) (string, error) {
	if project == "" {
		return "", fmt.Errorf("%w: no project", derrors.InvalidArgument)
	}
	if name == "" || strings.Contains(name, "/") {
		return "", fmt.Errorf("%w: bad secret name %q", derrors.InvalidArgument, name)
	}
	return fmt.Sprintf("projects/%s/secrets/%s/versions/latest", project, name), nil
}

// Get returns the latest value of the named secret as plaintext.
func Get(ctx context.Context, project, name string) (plaintext string, err error) {
	defer derrors.Add(&err, "secrets.Get(ctx, %q, %q)", project, name)

	vname, err := versionName(project, name)
	if err != nil {
		return "", err
	}
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return "", err
	}
	defer client.Close()
	result, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: vname,
	})
	if err != nil {
		return "", err
	}
	return string(result.Payload.Data), nil
}
