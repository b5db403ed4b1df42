// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tahu-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sparkplug

// MetaData carries descriptive information alongside a Metric: file
// name/type/size for File-valued metrics, a content description, or a flag
// marking the metric as a multi-part transfer.
type MetaData struct {
	IsMultiPart bool
	ContentType string
	Size        uint64
	Seq         uint64
	FileName    string
	FileType    string
	MD5         string
	Description string
}
